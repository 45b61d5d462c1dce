package scoring

// Tier is the feedback category of a percent score.
type Tier int

const (
	TierRequiresReview Tier = iota
	TierNeedsWork
	TierGood
	TierExcellent
)

// Thresholds, evaluated top-down.
const (
	ExcellentThreshold = 80
	GoodThreshold      = 70
	NeedsWorkThreshold = 50
)

// TierFor maps a percent onto its tier. Every int has a tier.
func TierFor(percent int) Tier {
	switch {
	case percent >= ExcellentThreshold:
		return TierExcellent
	case percent >= GoodThreshold:
		return TierGood
	case percent >= NeedsWorkThreshold:
		return TierNeedsWork
	default:
		return TierRequiresReview
	}
}

// MessageFor returns the feedback text for percent.
func MessageFor(percent int) string {
	return TierFor(percent).Message()
}

func (t Tier) Message() string {
	switch t {
	case TierExcellent:
		return "Excellent! Module unlocked!"
	case TierGood:
		return "Good result!"
	case TierNeedsWork:
		return "Needs more work"
	default:
		return "Requires review of the material"
	}
}

func (t Tier) String() string {
	switch t {
	case TierExcellent:
		return "excellent"
	case TierGood:
		return "good"
	case TierNeedsWork:
		return "needs-work"
	default:
		return "requires-review"
	}
}

// Passed reports whether the tier counts as a pass for styling.
func (t Tier) Passed() bool { return t >= TierGood }
