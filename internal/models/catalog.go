package models

// QuizQuestion is one multiple-choice question. Answer is the index
// into Options and must never reach a client before grading.
type QuizQuestion struct {
	Q       string   `json:"q" yaml:"q"`
	Options []string `json:"options" yaml:"options"`
	Answer  int      `json:"answer" yaml:"answer"`
}

// SanitizedQuestion is the client-safe view of a quiz question
type SanitizedQuestion struct {
	Q       string   `json:"q"`
	Options []string `json:"options"`
}

// TaskSpec is the practical assignment attached to a curriculum month
type TaskSpec struct {
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Deliverable string   `json:"deliverable" yaml:"deliverable"`
	Skills      []string `json:"skills,omitempty" yaml:"skills"`
}

// CurriculumMonth is one month of a field's study plan: a quiz plus a task
type CurriculumMonth struct {
	Month int            `json:"month" yaml:"month"`
	Topic string         `json:"topic" yaml:"topic"`
	Quiz  []QuizQuestion `json:"quiz" yaml:"quiz"`
	Task  TaskSpec       `json:"task" yaml:"task"`
}

// SanitizedMonth is a curriculum month with answer keys stripped
type SanitizedMonth struct {
	Month int                 `json:"month"`
	Topic string              `json:"topic"`
	Quiz  []SanitizedQuestion `json:"quiz"`
	Task  TaskSpec            `json:"task"`
}

// Sanitize strips the answer key so the month can be sent to a client
func (m *CurriculumMonth) Sanitize() SanitizedMonth {
	questions := make([]SanitizedQuestion, 0, len(m.Quiz))
	for _, q := range m.Quiz {
		questions = append(questions, SanitizedQuestion{Q: q.Q, Options: q.Options})
	}
	return SanitizedMonth{
		Month: m.Month,
		Topic: m.Topic,
		Quiz:  questions,
		Task:  m.Task,
	}
}
