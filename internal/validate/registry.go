package validate

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Check is a named validation step over a Pass.
type Check struct {
	ID   string
	Name string
	Run  func(*Pass)
}

// Registry maps a brief skill to the methodology check it enables.
type Registry struct {
	checks map[string]Check
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{checks: map[string]Check{}}
}

// Register binds skill to check. A skill can only be registered once.
func (r *Registry) Register(skill string, check Check) error {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return fmt.Errorf("register %s: skill is required", check.ID)
	}
	if check.Run == nil {
		return fmt.Errorf("register %s: check has no run function", skill)
	}
	if existing, ok := r.checks[skill]; ok {
		return fmt.Errorf("register %s: already bound to %s", skill, existing.ID)
	}
	r.checks[skill] = check
	return nil
}

// Lookup returns the check bound to skill.
func (r *Registry) Lookup(skill string) (Check, bool) {
	check, ok := r.checks[skill]
	return check, ok
}

// Skills lists registered skills ordered by check id.
func (r *Registry) Skills() []string {
	skills := make([]string, 0, len(r.checks))
	for skill := range r.checks {
		skills = append(skills, skill)
	}
	sort.Slice(skills, func(i, j int) bool {
		a, b := r.checks[skills[i]].ID, r.checks[skills[j]].ID
		if a != b {
			return a < b
		}
		return skills[i] < skills[j]
	})
	return skills
}

// active returns the checks enabled by skills, ordered by check id and
// run at most once each.
func (r *Registry) active(skills []string) []Check {
	enabled := map[string]bool{}
	for _, skill := range skills {
		enabled[skill] = true
	}
	var out []Check
	for _, skill := range r.Skills() {
		if enabled[skill] {
			out = append(out, r.checks[skill])
		}
	}
	return out
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r := NewRegistry()
	for _, binding := range methodologyChecks {
		if err := r.Register(binding.skill, binding.check); err != nil {
			panic(err)
		}
	}
	return r
})

// DefaultRegistry returns the built-in methodology registry. It is built
// once and shared; callers that need extra checks should start from
// NewRegistry.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}

type skillBinding struct {
	skill string
	check Check
}

var methodologyChecks = []skillBinding{
	{"pricing-study", Check{ID: "METH_001", Name: "van_westendorp", Run: checkVanWestendorp}},
	{"concept-test", Check{ID: "METH_002", Name: "concept_test", Run: checkConceptTest}},
	{"conjoint", Check{ID: "METH_003", Name: "conjoint", Run: checkConjoint}},
	{"maxdiff", Check{ID: "METH_004", Name: "maxdiff", Run: checkMaxDiff}},
	{"nps-csat", Check{ID: "METH_005", Name: "nps_csat", Run: checkNPSCSAT}},
	{"ad-testing", Check{ID: "METH_006", Name: "ad_testing", Run: checkAdTesting}},
	{"message-test", Check{ID: "METH_007", Name: "message_test", Run: checkMessageTest}},
	{"claims-testing", Check{ID: "METH_008", Name: "claims_testing", Run: checkClaimsTesting}},
	{"naming-testing", Check{ID: "METH_009", Name: "naming_testing", Run: checkNamingTesting}},
	{"pack-testing", Check{ID: "METH_010", Name: "pack_testing", Run: checkPackTesting}},
	{"brand-tracking", Check{ID: "METH_011", Name: "brand_tracking", Run: checkBrandTracking}},
	{"market-share-tracking", Check{ID: "METH_012", Name: "market_share_tracking", Run: checkMarketShareTracking}},
	{"market-share-benchmarking", Check{ID: "METH_013", Name: "market_share_benchmarking", Run: checkMarketShareBenchmarking}},
	{"penetration-frequency-loyalty", Check{ID: "METH_014", Name: "penetration_frequency_loyalty", Run: checkPenetrationFrequencyLoyalty}},
	{"awareness-trial-usage", Check{ID: "METH_015", Name: "awareness_trial_usage", Run: checkAwarenessTrialUsage}},
	{"market-sizing", Check{ID: "METH_016", Name: "market_sizing", Run: checkMarketSizing}},
	{"customer-lifecycle", Check{ID: "METH_017", Name: "customer_lifecycle", Run: checkCustomerLifecycle}},
	{"churn-retention", Check{ID: "METH_018", Name: "churn_retention", Run: checkChurnRetention}},
	{"employee-engagement", Check{ID: "METH_019", Name: "employee_engagement", Run: checkEmployeeEngagement}},
	{"voc-programs", Check{ID: "METH_020", Name: "voc_programs", Run: checkVoCPrograms}},
	{"usability-testing", Check{ID: "METH_021", Name: "usability_testing", Run: checkUsabilityTesting}},
	{"brand-positioning", Check{ID: "METH_022", Name: "brand_positioning", Run: checkBrandPositioning}},
	{"brand-architecture", Check{ID: "METH_023", Name: "brand_architecture", Run: checkBrandArchitecture}},
	{"go-to-market-validation", Check{ID: "METH_024", Name: "go_to_market_validation", Run: checkGoToMarket}},
	{"segmentation", Check{ID: "METH_025", Name: "segmentation", Run: checkSegmentation}},
}
