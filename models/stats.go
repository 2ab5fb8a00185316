package models

// RankedCount is one row of a top-K table.
type RankedCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// Stats holds the aggregates derived from the consolidated submission set.
// The JSON keys match the layout of the persisted snapshot.
type Stats struct {
	TopLanguages        []RankedCount  `json:"top-5-languages-used" yaml:"top_languages"`
	TopSubmissions      []RankedCount  `json:"top-2-submissions-attempted" yaml:"top_submissions"`
	SubmissionsPerLevel map[string]int `json:"submissions-per-level" yaml:"submissions_per_level"`
	TotalSubmissions    int            `json:"total-submission" yaml:"total_submissions"`
}

// EmptyStats returns the zero state shown before any data is loaded.
func EmptyStats() Stats {
	return Stats{
		TopLanguages:   []RankedCount{},
		TopSubmissions: []RankedCount{},
		SubmissionsPerLevel: map[string]int{
			string(LevelHard):   0,
			string(LevelMedium): 0,
			string(LevelEasy):   0,
		},
	}
}

// Snapshot is the consolidated state persisted under the aggregate cache key.
type Snapshot struct {
	Submissions []Submission `json:"submissions"`
	Stats       Stats        `json:"stats"`
}

// Consistent reports whether the stats agree with the submission set they
// were computed from.
func (s Snapshot) Consistent() bool {
	return s.Submissions != nil && s.Stats.TotalSubmissions == len(s.Submissions)
}
