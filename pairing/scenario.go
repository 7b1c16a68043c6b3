// pairing/scenario.go
package pairing

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Scenario keys and the file prefix their layout images use.
const (
	ScenarioHammerAnvil        = "HAMMER_ANVIL"
	ScenarioSeekDestroy        = "SEEK_DESTROY"
	ScenarioCrucibleBattle     = "CRUCIBLE_BATTLE"
	ScenarioTippingPoints      = "TIPPING_POINTS"
	ScenarioDawnOfWar          = "DAWN_OF_WAR"
	ScenarioSweepingEngagement = "SWEEPING_ENGAGEMENT"
)

var ScenarioPrefixes = map[string]string{
	ScenarioHammerAnvil:        "HA",
	ScenarioSeekDestroy:        "SD",
	ScenarioCrucibleBattle:     "CB",
	ScenarioTippingPoints:      "TP",
	ScenarioDawnOfWar:          "DOW",
	ScenarioSweepingEngagement: "SE",
}

var scenarioLabels = map[string]string{
	ScenarioHammerAnvil:        "Hammer and Anvil",
	ScenarioSeekDestroy:        "Seek and Destroy",
	ScenarioCrucibleBattle:     "Crucible Battle",
	ScenarioTippingPoints:      "Tipping Points",
	ScenarioDawnOfWar:          "Dawn of War",
	ScenarioSweepingEngagement: "Sweeping Engagement",
}

// ScenarioLabel returns a display label; unknown keys are humanized.
func ScenarioLabel(key string) string {
	if key == "" {
		return ""
	}
	if l, ok := scenarioLabels[key]; ok {
		return l
	}
	return cases.Lower(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// Layout is one numbered board setup within a scenario.
type Layout struct {
	N    int    `json:"n"`
	File string `json:"file"`
}

// Inventory maps a scenario key to its layouts ordered by number.
type Inventory map[string][]Layout

// Has reports whether n is a layout of scenario.
func (inv Inventory) Has(scenario string, n int) bool {
	for _, l := range inv[scenario] {
		if l.N == n {
			return true
		}
	}
	return false
}

// KnowsScenario reports whether scenario is a key of the inventory. An
// inventory with no keys at all knows nothing and accepts any scenario.
func (inv Inventory) KnowsScenario(scenario string) bool {
	if len(inv) == 0 {
		return true
	}
	_, ok := inv[scenario]
	return ok
}

// File returns the image file name of a layout, if any.
func (inv Inventory) File(scenario string, n int) (string, bool) {
	for _, l := range inv[scenario] {
		if l.N == n {
			return l.File, true
		}
	}
	return "", false
}

var layoutPatterns = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(ScenarioPrefixes))
	for scenario, prefix := range ScenarioPrefixes {
		out[scenario] = regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(prefix) + `(\d+)\.png$`)
	}
	return out
}()

// ParseLayoutFile reports the scenario and layout number a file name stands
// for, e.g. "dow3.png" is DAWN_OF_WAR layout 3.
func ParseLayoutFile(name string) (string, int, bool) {
	for scenario, rx := range layoutPatterns {
		m := rx.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		return scenario, n, true
	}
	return "", 0, false
}

// BuildInventory classifies file names into scenarios. Every known scenario
// is present in the result, possibly with no layouts.
func BuildInventory(files []string) Inventory {
	inv := make(Inventory, len(ScenarioPrefixes))
	for scenario := range ScenarioPrefixes {
		inv[scenario] = []Layout{}
	}
	for _, name := range files {
		scenario, n, ok := ParseLayoutFile(name)
		if !ok || inv.Has(scenario, n) {
			continue
		}
		inv[scenario] = append(inv[scenario], Layout{N: n, File: name})
	}
	for scenario := range inv {
		ls := inv[scenario]
		sort.Slice(ls, func(i, j int) bool { return ls[i].N < ls[j].N })
	}
	return inv
}
