package models

// Race identifies a game title and in-title race. The wire form is the
// string form (e.g. "bw_terran"); it is also the DB column value.
type Race string

const (
	RaceBWTerran   Race = "bw_terran"
	RaceBWZerg     Race = "bw_zerg"
	RaceBWProtoss  Race = "bw_protoss"
	RaceSC2Terran  Race = "sc2_terran"
	RaceSC2Zerg    Race = "sc2_zerg"
	RaceSC2Protoss Race = "sc2_protoss"
)

// Title is the game the race belongs to.
type Title string

const (
	TitleBW  Title = "bw"
	TitleSC2 Title = "sc2"
)

var allRaces = map[Race]Title{
	RaceBWTerran:   TitleBW,
	RaceBWZerg:     TitleBW,
	RaceBWProtoss:  TitleBW,
	RaceSC2Terran:  TitleSC2,
	RaceSC2Zerg:    TitleSC2,
	RaceSC2Protoss: TitleSC2,
}

// Valid reports whether r is one of the six known race identifiers.
func (r Race) Valid() bool {
	_, ok := allRaces[r]
	return ok
}

// TitleOf returns the game title a race belongs to. Panics on an invalid
// race; callers must validate with Valid first.
func (r Race) TitleOf() Title {
	t, ok := allRaces[r]
	if !ok {
		panic("models: invalid race " + string(r))
	}
	return t
}
