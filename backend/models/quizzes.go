package models

type Quiz struct {
	Base
	CourseID     string     `gorm:"index" json:"course_id"`
	Title        string     `gorm:"not null" json:"title"`
	Description  string     `json:"description"`
	TimeLimitMin int        `json:"time_limit_min"` // 0 means unlimited
	PassingScore float64    `gorm:"default:50" json:"passing_score"`
	QuizOrder    int        `json:"quiz_order"`
	Questions    []Question `json:"questions,omitempty"`
}

type Question struct {
	Base
	QuizID        string         `gorm:"index" json:"quiz_id"`
	Text          string         `gorm:"not null" json:"text"`
	Points        float64        `gorm:"default:1" json:"points"`
	QuestionOrder int            `json:"question_order"`
	Options       []AnswerOption `json:"options,omitempty"`
}

type AnswerOption struct {
	Base
	QuestionID  string `gorm:"index" json:"question_id"`
	Text        string `gorm:"not null" json:"text"`
	IsCorrect   bool   `json:"is_correct"`
	OptionOrder int    `json:"option_order"`
}

type QuizAttempt struct {
	Base
	QuizID        string  `gorm:"index" json:"quiz_id"`
	UserID        string  `gorm:"index" json:"user_id"`
	Score         float64 `json:"score"`
	MaxScore      float64 `json:"max_score"`
	Passed        bool    `json:"passed"`
	AttemptNumber int     `json:"attempt_number"`
}
