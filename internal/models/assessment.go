// assessment.go
package models

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed questionnaires.yaml
var defaultAssessmentYAML []byte

// QuestionnaireKind identifies one of the two instruments.
type QuestionnaireKind string

const (
	PHQ9 QuestionnaireKind = "phq9"
	GAD7 QuestionnaireKind = "gad7"
)

// ParseQuestionnaireKind accepts only "phq9" or "gad7".
func ParseQuestionnaireKind(s string) (QuestionnaireKind, error) {
	switch QuestionnaireKind(s) {
	case PHQ9, GAD7:
		return QuestionnaireKind(s), nil
	}
	return "", fmt.Errorf("unknown questionnaire %q", s)
}

// itemCounts is the fixed arity of each instrument.
var itemCounts = map[QuestionnaireKind]int{
	PHQ9: 9,
	GAD7: 7,
}

// ItemCount returns the number of items the instrument has.
func (k QuestionnaireKind) ItemCount() int { return itemCounts[k] }

// Questionnaire struct to match the YAML structure
type Questionnaire struct {
	ID          QuestionnaireKind `yaml:"id" json:"id"`
	Title       string            `yaml:"title" json:"title"`
	Description string            `yaml:"description" json:"description"`
	Questions   []string          `yaml:"questions" json:"questions"`
}

// Option struct for the four-point response choices
type Option struct {
	Value int    `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// DifficultyOption struct for the functional-impairment choices
type DifficultyOption struct {
	Value Difficulty `yaml:"value" json:"value"`
	Label string     `yaml:"label" json:"label"`
}

// Assessment struct to hold both instruments and their shared choice tables
type Assessment struct {
	Choices        []Option           `yaml:"choices"`
	Difficulties   []DifficultyOption `yaml:"difficulties"`
	Questionnaires []Questionnaire    `yaml:"questionnaires"`
}

// LoadAssessment reads and parses a questionnaires.yaml file. An empty path
// loads the embedded definitions.
func LoadAssessment(path string) (*Assessment, error) {
	if path == "" {
		return DefaultAssessment()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assessment file: %w", err)
	}
	return ParseAssessment(data)
}

// DefaultAssessment returns the embedded PHQ-9 / GAD-7 definitions.
func DefaultAssessment() (*Assessment, error) {
	return ParseAssessment(defaultAssessmentYAML)
}

// ParseAssessment decodes and validates questionnaire definitions.
func ParseAssessment(data []byte) (*Assessment, error) {
	var assessment Assessment
	if err := yaml.Unmarshal(data, &assessment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assessment YAML: %w", err)
	}
	if err := assessment.validate(); err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (a *Assessment) validate() error {
	if len(a.Choices) != 4 {
		return fmt.Errorf("assessment must define 4 choices, got %d", len(a.Choices))
	}
	for i, c := range a.Choices {
		if c.Value != i {
			return fmt.Errorf("choice %d has value %d, want %d", i, c.Value, i)
		}
	}
	if len(a.Difficulties) != 4 {
		return fmt.Errorf("assessment must define 4 difficulty levels, got %d", len(a.Difficulties))
	}
	for _, d := range a.Difficulties {
		if _, err := ParseDifficulty(string(d.Value)); err != nil {
			return err
		}
	}
	for kind, n := range itemCounts {
		q, ok := a.Questionnaire(kind)
		if !ok {
			return fmt.Errorf("assessment is missing questionnaire %q", kind)
		}
		if len(q.Questions) != n {
			return fmt.Errorf("questionnaire %q must have %d questions, got %d", kind, n, len(q.Questions))
		}
	}
	return nil
}

// Questionnaire looks up an instrument by kind.
func (a *Assessment) Questionnaire(kind QuestionnaireKind) (*Questionnaire, bool) {
	for i := range a.Questionnaires {
		if a.Questionnaires[i].ID == kind {
			return &a.Questionnaires[i], true
		}
	}
	return nil, false
}

// QuestionText returns the canonical text for a 0-based item index, or ""
// when the index is out of range.
func (q *Questionnaire) QuestionText(idx int) string {
	if idx < 0 || idx >= len(q.Questions) {
		return ""
	}
	return q.Questions[idx]
}

// ChoiceLabel maps a 0..3 score to its response label. Scores outside the
// table are shown as "Score N".
func (a *Assessment) ChoiceLabel(score int) string {
	for _, c := range a.Choices {
		if c.Value == score {
			return c.Label
		}
	}
	return fmt.Sprintf("Score %d", score)
}

// DifficultyLabel maps a difficulty value to its display label.
func (a *Assessment) DifficultyLabel(d Difficulty) string {
	for _, opt := range a.Difficulties {
		if opt.Value == d {
			return opt.Label
		}
	}
	return string(d)
}
