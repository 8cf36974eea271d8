package trialseq

// Ordering selects how condition indices are arranged across
// repetitions when the trial sequence is generated. Fixed at handler
// construction.
type Ordering string

const (
	// OrderSequential presents conditions in table order, once per
	// repetition.
	OrderSequential Ordering = "sequential"

	// OrderRandom shuffles condition indices independently within each
	// repetition. Every repetition still covers every condition exactly
	// once.
	OrderRandom Ordering = "random"

	// OrderFullRandom shuffles all repetitions*conditions slots
	// together, flattening repetition boundaries. A given repetition
	// block may then repeat some conditions and omit others; across the
	// whole run each condition still appears exactly once per
	// repetition. This changes the statistical properties of the
	// sequence and is the point of the policy, not an artifact.
	OrderFullRandom Ordering = "fullRandom"
)

// ParseOrdering maps a configuration string to an Ordering. It accepts
// the canonical names above plus the common "fullrandom" spelling.
func ParseOrdering(s string) (Ordering, error) {
	switch s {
	case string(OrderSequential):
		return OrderSequential, nil
	case string(OrderRandom):
		return OrderRandom, nil
	case string(OrderFullRandom), "fullrandom":
		return OrderFullRandom, nil
	default:
		return "", &UnknownOrderingError{Ordering: Ordering(s)}
	}
}
