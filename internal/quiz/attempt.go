package quiz

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/example/skillbuilder/pkg/models"
)

// Question is a quiz question with its options in presentation order
type Question struct {
	Text    string
	Options []models.QuizAnswer
}

// Attempt walks a user through a quiz one question at a time. It is safe
// for concurrent use.
type Attempt struct {
	Quiz      models.Quiz
	questions []Question

	mu         sync.Mutex
	selections []int64
}

// NewAttempt prepares an attempt. When rnd is not nil the options of every
// question are shuffled.
func NewAttempt(quiz models.Quiz, rnd *rand.Rand) *Attempt {
	a := &Attempt{Quiz: quiz}
	for _, q := range quiz.Questions {
		options := append([]models.QuizAnswer(nil), q.Answers...)
		if rnd != nil {
			rnd.Shuffle(len(options), func(i, j int) {
				options[i], options[j] = options[j], options[i]
			})
		}
		a.questions = append(a.questions, Question{Text: q.Question, Options: options})
	}
	return a
}

// Current returns the question to answer next and its 1-based number
func (a *Attempt) Current() (Question, int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current()
}

func (a *Attempt) current() (Question, int, bool) {
	i := len(a.selections)
	if i >= len(a.questions) {
		return Question{}, 0, false
	}
	return a.questions[i], i + 1, true
}

// Total is the number of questions
func (a *Attempt) Total() int {
	return len(a.questions)
}

// Answer records the option at 1-based position choice for the current
// question and reports whether the attempt is finished
func (a *Attempt) Answer(choice int) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	q, _, ok := a.current()
	if !ok {
		return true, fmt.Errorf("%w: quiz already finished", ErrInvalidInput)
	}
	if choice < 1 || choice > len(q.Options) {
		return false, fmt.Errorf("%w: choose an option between 1 and %d", ErrInvalidInput, len(q.Options))
	}
	a.selections = append(a.selections, q.Options[choice-1].ID)
	return len(a.selections) == len(a.questions), nil
}

// Done reports whether every question has been answered
func (a *Attempt) Done() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.selections) == len(a.questions)
}

// Selections returns the chosen answer ids in question order
func (a *Attempt) Selections() []int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int64(nil), a.selections...)
}
