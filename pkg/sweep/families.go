package sweep

import "strings"

// Family labels used throughout the pipeline. The aggregate table has one
// column set per family; the energy model consumes three of them.
const (
	FamilyThroughput = "throughput"
	FamilySINR       = "sinr"
	FamilyDelay      = "delay"
	FamilyProcDemand = "procdemand"
)

// Families maps a family label to its keyword aliases. A record belongs to a
// family when its name, lowercased, equals or contains any alias. A record
// may match several families; each family aggregates its own subset.
type Families map[string][]string

// DefaultFamilies covers the metric names observed across Simu5G result-file
// producers. Scenario configs may extend or replace these lists.
func DefaultFamilies() Families {
	return Families{
		FamilyThroughput: {
			"receivedthroughput", "receivedthroughtput", // the typo ships in some producers
			"throughput", "uethroughput", "avgthroughput", "cellthroughput", "app.rxthroughput",
		},
		FamilySINR: {
			"sinr", "avgsinr", "meansinr", "phy.sinr", "rsrpsinr",
		},
		FamilyDelay: {
			"framedelay", "delay", "e2edelay",
		},
		FamilyProcDemand: {
			"cnprocdemand", "coreprocdemand", "procdemand",
		},
	}
}

// Match reports the families the metric name belongs to.
func (f Families) Match(name string) []string {
	n := strings.ToLower(name)
	var out []string
	for family, aliases := range f {
		for _, a := range aliases {
			if n == a || strings.Contains(n, a) {
				out = append(out, family)
				break
			}
		}
	}
	return out
}

// Member reports whether the metric name belongs to one specific family.
func (f Families) Member(name, family string) bool {
	n := strings.ToLower(name)
	for _, a := range f[family] {
		if n == a || strings.Contains(n, a) {
			return true
		}
	}
	return false
}
