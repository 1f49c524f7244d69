package model

// Question is one trivia question gating a battle turn
type Question struct {
	ID           string   `json:"id" bson:"_id,omitempty"`
	Text         string   `json:"text" bson:"text"`
	Options      []string `json:"options" bson:"options"`
	CorrectIndex int      `json:"correctIndex" bson:"correctIndex"`
	GradeLevel   int      `json:"gradeLevel" bson:"gradeLevel"`
	Subject      string   `json:"subject,omitempty" bson:"subject,omitempty"`
}

// QuestionPayload is the client-facing projection, stripped of the answer
type QuestionPayload struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Options    []string `json:"options"`
	GradeLevel int      `json:"gradeLevel"`
}

// Public strips the correct index for broadcast to players
func (q *Question) Public() *QuestionPayload {
	return &QuestionPayload{
		ID:         q.ID,
		Text:       q.Text,
		Options:    q.Options,
		GradeLevel: q.GradeLevel,
	}
}
