package session

import "testing"

func TestDragMachineLifecycle(t *testing.T) {
	var m dragMachine

	if err := m.start(DragItem, "abc"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.start(DragItem, "def"); err == nil {
		t.Fatal("second start while dragging must fail")
	}

	kind, source, err := m.drop()
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if kind != DragItem || source != "abc" {
		t.Fatalf("drop returned %s/%s, want item/abc", kind, source)
	}
	if m.phase != phaseCommitting {
		t.Fatalf("phase after drop = %s, want committing", m.phase)
	}

	// Drop while committing is invalid.
	if _, _, err := m.drop(); err == nil {
		t.Fatal("drop outside dragging must fail")
	}

	m.settle()
	if m.phase != phaseIdle || m.sourceID != "" {
		t.Fatalf("settle must reset the machine, got %s/%q", m.phase, m.sourceID)
	}
}

func TestDragMachineRejectsUnknownKind(t *testing.T) {
	var m dragMachine
	if err := m.start("card", "abc"); err == nil {
		t.Fatal("unknown kind must be rejected")
	}
	if m.phase != phaseIdle {
		t.Fatalf("failed start must leave the machine idle, got %s", m.phase)
	}
}

func TestDragMachineCancel(t *testing.T) {
	var m dragMachine
	if err := m.start(DragRow, "r1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	m.cancel()
	if m.phase != phaseIdle {
		t.Fatalf("cancel must return to idle, got %s", m.phase)
	}
	if err := m.start(DragItem, "i1"); err != nil {
		t.Fatalf("start after cancel: %v", err)
	}
}
