package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/skillbuilder/internal/database"
	"github.com/example/skillbuilder/internal/progress"
	"github.com/example/skillbuilder/pkg/models"
)

// ErrInvalidInput is returned when selections don't fit the quiz
var ErrInvalidInput = errors.New("invalid input")

// Service grades quizzes and records results
type Service struct {
	store database.Store
	now   func() time.Time
}

// NewService creates a quiz service over store
func NewService(store database.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock replaces the clock used for result timestamps
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Quiz(ctx context.Context, id int64) (*models.Quiz, error) {
	q, err := s.store.QuizByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("quiz %d: %w", id, err)
	}
	return q, nil
}

// ForModule returns the quizzes attached to a module
func (s *Service) ForModule(ctx context.Context, moduleID int64) ([]models.Quiz, error) {
	if _, err := s.store.ModuleByID(ctx, moduleID); err != nil {
		return nil, fmt.Errorf("module %d: %w", moduleID, err)
	}
	return s.store.QuizzesByModule(ctx, moduleID)
}

// Results returns the quiz results of a user
func (s *Service) Results(ctx context.Context, userID string) ([]models.UserQuizResult, error) {
	return s.store.QuizResultsByUser(ctx, userID)
}

// Grade scores selections, one answer id per question in question order,
// as the rounded percentage of correct answers
func Grade(quiz *models.Quiz, selections []int64) (int, error) {
	if len(quiz.Questions) == 0 {
		return 0, fmt.Errorf("%w: quiz %d has no questions", ErrInvalidInput, quiz.ID)
	}
	if len(selections) != len(quiz.Questions) {
		return 0, fmt.Errorf("%w: expected %d answers, got %d", ErrInvalidInput, len(quiz.Questions), len(selections))
	}

	correct := 0
	for i, q := range quiz.Questions {
		answer, ok := findAnswer(q, selections[i])
		if !ok {
			return 0, fmt.Errorf("%w: answer %d does not belong to question %d", ErrInvalidInput, selections[i], q.ID)
		}
		if answer.IsCorrect {
			correct++
		}
	}
	return progress.Percentage(correct, len(quiz.Questions)), nil
}

// Submit grades selections and stores the result
func (s *Service) Submit(ctx context.Context, userID string, quizID int64, selections []int64) (*models.UserQuizResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	q, err := s.Quiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	score, err := Grade(q, selections)
	if err != nil {
		return nil, err
	}
	return s.store.SaveQuizResult(ctx, userID, quizID, score, s.now())
}

func findAnswer(q models.QuizQuestion, answerID int64) (models.QuizAnswer, bool) {
	for _, a := range q.Answers {
		if a.ID == answerID {
			return a, true
		}
	}
	return models.QuizAnswer{}, false
}
