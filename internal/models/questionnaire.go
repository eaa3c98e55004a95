package models

import "fmt"

// Difficulty is the single functional-impairment answer collected with each
// questionnaire.
type Difficulty string

const (
	DifficultyNone      Difficulty = "not_difficult"
	DifficultySomewhat  Difficulty = "somewhat"
	DifficultyVery      Difficulty = "very"
	DifficultyExtremely Difficulty = "extremely"
)

// ParseDifficulty accepts only the four enumerated levels.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyNone, DifficultySomewhat, DifficultyVery, DifficultyExtremely:
		return Difficulty(s), nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// QuestionnaireResponse holds one instrument's answers. A nil ItemScores
// means no data was collected; a nil entry means that item is unanswered.
// TotalScore is set only when every item is answered.
type QuestionnaireResponse struct {
	ItemScores []*int      `json:"itemScores"`
	Difficulty *Difficulty `json:"difficulty"`
	TotalScore *int        `json:"totalScore"`
}

// NewQuestionnaireResponse returns a response with n unanswered items.
func NewQuestionnaireResponse(n int) QuestionnaireResponse {
	return QuestionnaireResponse{ItemScores: make([]*int, n)}
}

// HasData reports whether an item-score sequence is present at all.
func (r QuestionnaireResponse) HasData() bool {
	return r.ItemScores != nil
}

// Clone returns a deep copy.
func (r QuestionnaireResponse) Clone() QuestionnaireResponse {
	out := QuestionnaireResponse{}
	if r.ItemScores != nil {
		out.ItemScores = make([]*int, len(r.ItemScores))
		for i, s := range r.ItemScores {
			if s != nil {
				v := *s
				out.ItemScores[i] = &v
			}
		}
	}
	if r.Difficulty != nil {
		d := *r.Difficulty
		out.Difficulty = &d
	}
	if r.TotalScore != nil {
		t := *r.TotalScore
		out.TotalScore = &t
	}
	return out
}

// UnmarshalText rejects unknown difficulty levels.
func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
