package matchmaker

import (
	"fmt"
	"math/rand"
)

// ServerTable maps a two-letter country code to its matchmaking server
// address, the "static two-country → server table" of spec §4.4.
type ServerTable map[string]string

// DefaultServerTable is a minimal grounding-only table; deployments
// override it via config.
var DefaultServerTable = ServerTable{
	"US": "us-east.ladder.internal:27015",
	"EU": "eu-west.ladder.internal:27015",
}

// PickServer resolves a server address for a pair of country codes,
// falling back to an arbitrary table entry (Go map iteration order is not
// defined) when neither matches, and to "" only for an empty table.
func (t ServerTable) PickServer(countryA, countryB string) string {
	if s, ok := t[countryA]; ok {
		return s
	}
	if s, ok := t[countryB]; ok {
		return s
	}
	for _, s := range t {
		return s
	}
	return ""
}

// PickMap chooses a uniform-random map from pool minus the union of both
// players' vetoes; if that set is empty, vetoes are ignored and a map is
// chosen from the full pool (spec §4.4 "Match creation").
func PickMap(rng *rand.Rand, pool []string, vetoesA, vetoesB []string) string {
	vetoed := make(map[string]bool, len(vetoesA)+len(vetoesB))
	for _, v := range vetoesA {
		vetoed[v] = true
	}
	for _, v := range vetoesB {
		vetoed[v] = true
	}

	var candidates []string
	for _, m := range pool {
		if !vetoed[m] {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		candidates = pool
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[rng.Intn(len(candidates))]
}

// ChatChannelTag generates a tag of the form "scevoNNN" with a random
// 3-digit suffix, per spec §4.4.
func ChatChannelTag(rng *rand.Rand) string {
	return fmt.Sprintf("scevo%03d", rng.Intn(1000))
}
