package models

import "time"

// Quiz is a set of questions attached to a module
type Quiz struct {
	ID        int64          `json:"id" db:"id"`
	ModuleID  int64          `json:"module_id" db:"module_id"`
	Title     string         `json:"title" db:"title"`
	Questions []QuizQuestion `json:"quiz_questions" db:"-"`
}

// QuizQuestion is a single multiple choice question
type QuizQuestion struct {
	ID         int64        `json:"id" db:"id"`
	QuizID     int64        `json:"quiz_id" db:"quiz_id"`
	Question   string       `json:"question" db:"question"`
	OrderIndex int          `json:"order_index" db:"order_index"`
	Answers    []QuizAnswer `json:"quiz_answers" db:"-"`
}

// QuizAnswer is one option of a question
type QuizAnswer struct {
	ID         int64  `json:"id" db:"id"`
	QuestionID int64  `json:"question_id" db:"question_id"`
	Answer     string `json:"answer" db:"answer"`
	IsCorrect  bool   `json:"is_correct" db:"is_correct"`
}

// UserQuizResult tracks the score a user got on a quiz
type UserQuizResult struct {
	ID          int64     `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	QuizID      int64     `json:"quiz_id" db:"quiz_id"`
	Score       int       `json:"score" db:"score"` // 0-100
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}
