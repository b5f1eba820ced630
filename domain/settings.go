package domain

import "maps"

// Settings are viewer preferences. Only Beep and Screamer are interpreted by
// the room; Extra is stored and echoed back to clients untouched.
type Settings struct {
	Beep     bool              `json:"beep"`
	Screamer bool              `json:"screamer"`
	Extra    map[string]string `json:"extra,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{Beep: true, Screamer: true}
}

func (s Settings) Equal(other Settings) bool {
	return s.Beep == other.Beep &&
		s.Screamer == other.Screamer &&
		maps.Equal(s.Extra, other.Extra)
}

func (s Settings) clone() Settings {
	s.Extra = maps.Clone(s.Extra)
	return s
}
