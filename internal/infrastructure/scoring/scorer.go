package scoring

import "strings"

// Scorer applies the heuristics table to a candidate URL. It is a pure
// function of its inputs; no network or state.
type Scorer struct {
	heuristics Heuristics
}

func NewScorer(heuristics Heuristics) *Scorer {
	return &Scorer{heuristics: heuristics}
}

func (s *Scorer) Heuristics() Heuristics {
	return s.heuristics
}

// Score rates how likely url is the official website of businessName.
// Denylisted domains return the hard-reject score immediately: a directory or
// social page is the wrong answer even when the name matches.
func (s *Scorer) Score(url, businessName string) int {
	lowered := strings.ToLower(url)

	for _, deny := range s.heuristics.DenyDomains {
		if strings.Contains(lowered, deny) {
			return s.heuristics.HardRejectScore
		}
	}

	score := 0
	if s.heuristics.LocalMarker != "" && strings.Contains(lowered, s.heuristics.LocalMarker) {
		score += s.heuristics.LocalMarkerBonus
	}

	if normalized := NormalizeName(businessName); normalized != "" && strings.Contains(lowered, normalized) {
		score += s.heuristics.NameMatchBonus
	}

	trimmed := strings.TrimRight(lowered, "/")
	for _, tld := range s.heuristics.BusinessTLDs {
		if strings.HasSuffix(trimmed, tld) {
			score += s.heuristics.BusinessTLDBonus
			break
		}
	}

	for _, suffix := range s.heuristics.FreeHostSuffixes {
		if strings.Contains(lowered, suffix) {
			score -= s.heuristics.FreeHostPenalty
			break
		}
	}

	return score
}

// NormalizeName lower-cases a business name and strips everything outside
// [a-z0-9], so "Java House" can match "javahouseafrica.com".
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
