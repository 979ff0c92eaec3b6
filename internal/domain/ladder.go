package domain

// BuiltinLadder is the virtual tier ladder used when a collection defines no
// custom ranks. It is never persisted; its names are valid assignment targets
// exactly as if they were CustomRank rows.
var BuiltinLadder = []string{"S", "A", "B", "C", "D", "F"}

// UnrankedTarget is the sentinel drop target that clears an item's tier.
const UnrankedTarget = "Unranked"

// IsBuiltinLadderName reports whether name is one of the fallback tiers.
// Comparison is exact: ladder names are single uppercase letters.
func IsBuiltinLadderName(name string) bool {
	for _, n := range BuiltinLadder {
		if n == name {
			return true
		}
	}
	return false
}
