package game

// Info is the static metadata of a game kind: display data, participant
// bounds, and the rule descriptor used to validate overrides.
type Info struct {
	GameKind       string                `json:"game_kind"`
	DisplayName    string                `json:"display_name"`
	Description    string                `json:"description"`
	MinPlayers     int                   `json:"min_players"`
	MaxPlayers     int                   `json:"max_players"`
	SupportedRules map[string]RuleOption `json:"supported_rules"`
	TurnBased      bool                  `json:"turn_based"`
	Category       string                `json:"category"`
}
