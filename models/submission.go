package models

// Level is the difficulty of the problem a submission was made against.
type Level string

const (
	LevelEasy   Level = "Easy"
	LevelMedium Level = "Medium"
	LevelHard   Level = "Hard"
)

// Valid reports whether l is one of the known difficulty levels.
func (l Level) Valid() bool {
	switch l {
	case LevelEasy, LevelMedium, LevelHard:
		return true
	}
	return false
}

// Submission is one recorded attempt at a coding problem.
type Submission struct {
	Title          string     `json:"title" yaml:"title"`
	Language       string     `json:"language" yaml:"language"`
	CompilerStatus string     `json:"compiler_status" yaml:"compiler_status"`
	StatusCode     StatusCode `json:"statusCode" yaml:"status_code"` // derived during aggregation
	Metadata       Metadata   `json:"metadata" yaml:"metadata"`
}

type Metadata struct {
	Level Level `json:"level" yaml:"level"`
}

// SubmissionPage is the body returned by the submissions endpoint.
type SubmissionPage struct {
	Websites []Submission `json:"websites"`
}

// CompilerImage is one entry of the compiler image lookup.
type CompilerImage struct {
	Language string `json:"language"`
	Icon     string `json:"icon"`
}

// ImageMapping maps a language name to its icon identifier.
type ImageMapping map[string]string

// NewImageMapping folds the lookup list into a mapping. Later entries win.
func NewImageMapping(images []CompilerImage) ImageMapping {
	m := make(ImageMapping, len(images))
	for _, img := range images {
		m[img.Language] = img.Icon
	}
	return m
}
