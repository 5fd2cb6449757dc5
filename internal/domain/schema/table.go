package schema

// Game system discriminators.
const (
	GameAlphaStrike = "as"
	GameBattleTech  = "bt"
)

// Default returns the stock field table for the BattleTech/Alpha Strike
// unit catalog. Order matters: first match wins per game.
func Default() *Registry {
	return MustRegistry([]FieldConfig{
		{Key: "name", CanonicalKey: "name", Kind: SimpleDropdown, TextMatch: true},
		{Key: "type", CanonicalKey: "type", Kind: SimpleDropdown},
		{Key: "role", CanonicalKey: "role", Kind: SimpleDropdown},
		{Key: "tech", CanonicalKey: "tech", Kind: SimpleDropdown},
		{Key: "rules", CanonicalKey: "rules", Kind: SimpleDropdown},
		{Key: "era", CanonicalKey: "era", Kind: SimpleDropdown},
		{Key: "faction", CanonicalKey: "factions", Kind: MultiStateDropdown},
		{Key: "equipment", CanonicalKey: "components", Kind: MultiStateDropdown, Countable: true},
		{Key: "ability", CanonicalKey: "as.specials", Kind: MultiStateDropdown, Game: GameAlphaStrike},
		{Key: "quirk", CanonicalKey: "quirks", Kind: MultiStateDropdown},
		// Merged tag set (factions + specials), semantic text only.
		{Key: "tag", CanonicalKey: "tags", Kind: MultiStateDropdown, Invisible: true},
		{Key: "pv", CanonicalKey: "as.pv", Kind: Range, Game: GameAlphaStrike},
		{Key: "bv", CanonicalKey: "bt.bv", Kind: Range, Game: GameBattleTech},
		{Key: "year", CanonicalKey: "year", Kind: Range},
		{Key: "tons", CanonicalKey: "tons", Kind: Range},
		{Key: "armor", CanonicalKey: "as.armor", Kind: Range, Game: GameAlphaStrike},
		{Key: "armor", CanonicalKey: "bt.armor", Kind: Range, Game: GameBattleTech},
		{Key: "structure", CanonicalKey: "as.structure", Kind: Range, Game: GameAlphaStrike},
		{Key: "structure", CanonicalKey: "bt.structure", Kind: Range, Game: GameBattleTech},
		{Key: "size", CanonicalKey: "as.size", Kind: Range, Game: GameAlphaStrike},
		{Key: "tmm", CanonicalKey: "as.tmm", Kind: Range, Game: GameAlphaStrike, IgnoreValues: []float64{-1}},
		{Key: "move", CanonicalKey: "as.move", Kind: Range, Game: GameAlphaStrike},
		{Key: "skill", CanonicalKey: "skill", Kind: Range},
		{Key: "dmgs", CanonicalKey: "as.dmg.s", Kind: Range, Game: GameAlphaStrike, IgnoreValues: []float64{-1}},
		{Key: "dmgm", CanonicalKey: "as.dmg.m", Kind: Range, Game: GameAlphaStrike, IgnoreValues: []float64{-1}},
		{Key: "dmgl", CanonicalKey: "as.dmg.l", Kind: Range, Game: GameAlphaStrike, IgnoreValues: []float64{-1}},
		{Key: "dmge", CanonicalKey: "as.dmg.e", Kind: Range, Game: GameAlphaStrike, IgnoreValues: []float64{-1}},
	}).WithAlias("dmg", "dmgs", "dmgm", "dmgl", "dmge")
}
