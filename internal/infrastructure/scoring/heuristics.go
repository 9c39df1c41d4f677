package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Heuristics is the tunable scoring table. It is plain data so market-specific
// adjustments stay a config change, not a code change.
type Heuristics struct {
	// DenyDomains hard-rejects any URL containing one of these substrings:
	// search engines, social networks, review aggregators, classifieds and
	// business directories are categorically never the official site.
	DenyDomains []string `yaml:"deny_domains"`

	// LocalMarker is the country-code domain signal for the target market.
	LocalMarker      string `yaml:"local_marker"`
	LocalMarkerBonus int    `yaml:"local_marker_bonus"`

	NameMatchBonus int `yaml:"name_match_bonus"`

	BusinessTLDs     []string `yaml:"business_tlds"`
	BusinessTLDBonus int      `yaml:"business_tld_bonus"`

	// FreeHostSuffixes flag free website-builder subdomains.
	FreeHostSuffixes []string `yaml:"free_host_suffixes"`
	FreeHostPenalty  int      `yaml:"free_host_penalty"`

	HardRejectScore int `yaml:"hard_reject_score"`

	// DiscardBelow and EarlyStopScore are consumed by the lookup strategy:
	// candidates scoring at or below DiscardBelow are dropped, and a running
	// best at or above EarlyStopScore skips the remaining queries.
	DiscardBelow   int `yaml:"discard_below"`
	EarlyStopScore int `yaml:"early_stop_score"`
}

// Default returns the built-in Kenyan-market table.
func Default() Heuristics {
	return Heuristics{
		DenyDomains: []string{
			"google.",
			"bing.com",
			"yahoo.",
			"duckduckgo.com",
			"facebook.com",
			"instagram.com",
			"twitter.com",
			"linkedin.com",
			"youtube.com",
			"tiktok.com",
			"pinterest.",
			"wikipedia.org",
			"yelp.com",
			"tripadvisor.",
			"glassdoor.",
			"foursquare.com",
			"crunchbase.com",
			"booking.com",
			"hotels.com",
			"opentable.",
			"yellowpages",
			"hotfrog.",
			"cylex",
			"brabys.com",
			"businesslist.co.ke",
			"kenyaplex.com",
			"pigiame.co.ke",
			"jiji.co.ke",
			"jumia.co.ke",
		},
		LocalMarker:      ".co.ke",
		LocalMarkerBonus: 20,
		NameMatchBonus:   30,
		BusinessTLDs:     []string{".com", ".co.ke", ".ke", ".biz", ".info"},
		BusinessTLDBonus: 10,
		FreeHostSuffixes: []string{
			".wordpress.com",
			".blogspot.com",
			".wixsite.com",
			".weebly.com",
			".webnode.page",
			".godaddysites.com",
			".business.site",
		},
		FreeHostPenalty: 5,
		HardRejectScore: -100,
		DiscardBelow:    -50,
		EarlyStopScore:  40,
	}
}

// LoadFile overlays a YAML table onto the defaults. Fields absent from the
// file keep their default values; provided lists replace the defaults.
func LoadFile(path string) (Heuristics, error) {
	h := Default()
	if path == "" {
		return h, nil
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return Heuristics{}, fmt.Errorf("read heuristics file: %w", err)
	}
	if err := yaml.Unmarshal(payload, &h); err != nil {
		return Heuristics{}, fmt.Errorf("parse heuristics yaml: %w", err)
	}
	return h, nil
}
