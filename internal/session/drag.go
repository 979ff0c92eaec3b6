package session

import "fmt"

// DragKind distinguishes dragging an item card from dragging a tier row.
type DragKind string

const (
	DragItem DragKind = "item"
	DragRow  DragKind = "row"
)

type dragPhase int

const (
	phaseIdle dragPhase = iota
	phaseDragging
	phaseCommitting
)

func (p dragPhase) String() string {
	switch p {
	case phaseDragging:
		return "dragging"
	case phaseCommitting:
		return "committing"
	default:
		return "idle"
	}
}

// dragMachine is the Idle → Dragging → Committing → Idle state machine. Any
// input mechanism that yields (sourceID, targetID, kind) on drop drives it;
// no particular pointer/touch library is assumed.
type dragMachine struct {
	phase    dragPhase
	kind     DragKind
	sourceID string
}

func (m *dragMachine) start(kind DragKind, sourceID string) error {
	if m.phase != phaseIdle {
		return fmt.Errorf("drag start in %s state", m.phase)
	}
	if kind != DragItem && kind != DragRow {
		return fmt.Errorf("unknown drag kind %q", kind)
	}
	m.phase = phaseDragging
	m.kind = kind
	m.sourceID = sourceID
	return nil
}

// drop ends the drag. It returns the in-flight kind and source; the caller
// decides whether the target is recognized. Either way the machine passes
// through committing back to idle, because an unrecognized target issues no
// mutation and there is nothing left to track.
func (m *dragMachine) drop() (DragKind, string, error) {
	if m.phase != phaseDragging {
		return "", "", fmt.Errorf("drop in %s state", m.phase)
	}
	kind, source := m.kind, m.sourceID
	m.phase = phaseCommitting
	return kind, source, nil
}

func (m *dragMachine) settle() {
	m.phase = phaseIdle
	m.kind = ""
	m.sourceID = ""
}

func (m *dragMachine) cancel() {
	m.settle()
}
