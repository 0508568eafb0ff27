package model

// FormatID identifies a set of game format rules
type FormatID string

// Built-in formats
const (
	FormatStandard  FormatID = "standard"
	FormatHalfCourt FormatID = "half_court"
)

// GameFormatRules is the immutable rule set a game is played under
type GameFormatRules struct {
	ID                    FormatID `json:"id"`
	Name                  string   `json:"name"`
	PeriodCount           int      `json:"period_count"`
	PeriodDurationSeconds int      `json:"period_duration_seconds"`
	TimeoutAllotment      int      `json:"timeout_allotment"`
	RequiredOnCourt       int      `json:"required_on_court"`
	// MinimumPeriods is the number of distinct periods every rostered player
	// must appear in. Zero disables the requirement.
	MinimumPeriods int `json:"minimum_periods"`
}

// StandardFormat returns the five-a-side rules
func StandardFormat() GameFormatRules {
	return GameFormatRules{
		ID:                    FormatStandard,
		Name:                  "Standard 5x5",
		PeriodCount:           4,
		PeriodDurationSeconds: 600,
		TimeoutAllotment:      5,
		RequiredOnCourt:       5,
	}
}

// HalfCourtFormat returns the three-a-side rules
func HalfCourtFormat() GameFormatRules {
	return GameFormatRules{
		ID:                    FormatHalfCourt,
		Name:                  "Half-court 3x3",
		PeriodCount:           1,
		PeriodDurationSeconds: 600,
		TimeoutAllotment:      1,
		RequiredOnCourt:       3,
	}
}

// Validate reports whether the rules are internally consistent
func (f GameFormatRules) Validate() bool {
	return f.ID != "" &&
		f.PeriodCount > 0 &&
		f.PeriodDurationSeconds > 0 &&
		f.RequiredOnCourt > 0 &&
		f.TimeoutAllotment >= 0 &&
		f.MinimumPeriods >= 0 &&
		f.MinimumPeriods <= f.PeriodCount
}
