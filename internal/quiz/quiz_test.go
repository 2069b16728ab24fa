package quiz

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/skillbuilder/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *Service {
	return NewService(database.NewMemoryStore(database.DefaultSeed()))
}

func TestGrade(t *testing.T) {
	q, err := newService().Quiz(context.Background(), 1)
	require.NoError(t, err)

	tests := []struct {
		name       string
		selections []int64
		want       int
	}{
		{"all correct", []int64{1, 5}, 100},
		{"one correct", []int64{1, 6}, 50},
		{"none correct", []int64{2, 8}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := Grade(q, tt.selections)
			require.NoError(t, err)
			assert.Equal(t, tt.want, score)
		})
	}
}

func TestGrade_RejectsBadSelections(t *testing.T) {
	q, err := newService().Quiz(context.Background(), 1)
	require.NoError(t, err)

	_, err = Grade(q, []int64{1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Grade(q, []int64{5, 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubmit_StoresResult(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newService().WithClock(func() time.Time { return at })

	result, err := svc.Submit(ctx, "user-1", 2, []int64{9})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.ID)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, at, result.CompletedAt)

	results, err := svc.Results(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, results, 3)

	_, err = svc.Submit(ctx, "user-1", 99, []int64{9})
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestForModule(t *testing.T) {
	svc := newService()

	quizzes, err := svc.ForModule(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, quizzes, 1)
	assert.Equal(t, "HTML Basics Quiz", quizzes[0].Title)

	quizzes, err = svc.ForModule(context.Background(), 8)
	require.NoError(t, err)
	assert.Empty(t, quizzes)

	_, err = svc.ForModule(context.Background(), 99)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestAttempt(t *testing.T) {
	q, err := newService().Quiz(context.Background(), 1)
	require.NoError(t, err)

	attempt := NewAttempt(*q, nil)
	assert.Equal(t, 2, attempt.Total())

	question, n, ok := attempt.Current()
	require.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Equal(t, "What does HTML stand for?", question.Text)

	_, err = attempt.Answer(5)
	assert.ErrorIs(t, err, ErrInvalidInput)

	done, err := attempt.Answer(1)
	require.NoError(t, err)
	assert.False(t, done)

	done, err = attempt.Answer(2)
	require.NoError(t, err)
	assert.True(t, done)

	_, _, ok = attempt.Current()
	assert.False(t, ok)

	score, err := Grade(q, attempt.Selections())
	require.NoError(t, err)
	assert.Equal(t, 50, score)
}

func TestAttempt_ConcurrentAnswers(t *testing.T) {
	q, err := newService().Quiz(context.Background(), 1)
	require.NoError(t, err)
	attempt := NewAttempt(*q, nil)

	var (
		wg       sync.WaitGroup
		finished atomic.Int32
		rejected atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			done, err := attempt.Answer(1)
			switch {
			case err != nil:
				rejected.Add(1)
			case done:
				finished.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), finished.Load())
	assert.Equal(t, int32(6), rejected.Load())
	assert.True(t, attempt.Done())
	assert.Len(t, attempt.Selections(), attempt.Total())
}

func TestAttempt_ShuffleKeepsOptions(t *testing.T) {
	q, err := newService().Quiz(context.Background(), 1)
	require.NoError(t, err)

	attempt := NewAttempt(*q, rand.New(rand.NewSource(42)))
	question, _, ok := attempt.Current()
	require.True(t, ok)
	assert.ElementsMatch(t, q.Questions[0].Answers, question.Options)
}
