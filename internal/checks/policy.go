package checks

// Tier is the outcome band of a validation run.
type Tier int

const (
	// TierReady means every check passed.
	TierReady Tier = iota
	// TierMostly means at least MostlyThreshold checks passed.
	TierMostly
	// TierIncomplete means fewer than MostlyThreshold checks passed.
	TierIncomplete
)

// String returns the string representation of a Tier.
func (t Tier) String() string {
	switch t {
	case TierReady:
		return "ready"
	case TierMostly:
		return "mostly_configured"
	case TierIncomplete:
		return "incomplete"
	default:
		return "unknown"
	}
}

// DefaultMostlyThreshold is the pass count (of eight) that still counts as
// mostly configured.
const DefaultMostlyThreshold = 6

// Policy maps a pass count to a tier.
type Policy struct {
	MostlyThreshold int
}

// DefaultPolicy returns the six-of-eight policy.
func DefaultPolicy() Policy {
	return Policy{MostlyThreshold: DefaultMostlyThreshold}
}

// Classify returns the tier for passed out of total checks.
func (p Policy) Classify(passed, total int) Tier {
	switch {
	case passed == total:
		return TierReady
	case passed >= p.MostlyThreshold:
		return TierMostly
	default:
		return TierIncomplete
	}
}

// Summary is the tally of a validation run.
type Summary struct {
	Results []Result
	Passed  int
	Total   int
	Tier    Tier
}

// ExitCode is 0 only when every check passed; both lower tiers exit 1.
func (s Summary) ExitCode() int {
	if s.Tier == TierReady {
		return 0
	}
	return 1
}

// Summarize tallies results under the policy.
func (p Policy) Summarize(results []Result) Summary {
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}
	return Summary{
		Results: results,
		Passed:  passed,
		Total:   len(results),
		Tier:    p.Classify(passed, len(results)),
	}
}
