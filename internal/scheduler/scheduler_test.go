package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/skillbuilder/internal/auth"
	"github.com/example/skillbuilder/internal/config"
	"github.com/example/skillbuilder/internal/database"
	"github.com/example/skillbuilder/internal/logger"
	"github.com/example/skillbuilder/internal/progress"
	"github.com/example/skillbuilder/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu      sync.Mutex
	digests map[int64]models.ProgressStats
	failFor int64
}

func (n *recordingNotifier) SendDigest(chatID int64, user models.User, stats models.ProgressStats) error {
	if chatID == n.failFor {
		return errors.New("chat blocked the bot")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.digests[chatID] = stats
	return nil
}

func newScheduler(t *testing.T, hour int) (*Scheduler, *recordingNotifier) {
	t.Helper()
	sessions := auth.NewSessions()
	require.NoError(t, sessions.Save(100, &models.User{ID: "user-1", Username: "testuser"}))
	require.NoError(t, sessions.Save(200, &models.User{ID: "user-2", Username: "newbie"}))

	notifier := &recordingNotifier{digests: map[int64]models.ProgressStats{}}
	svc := progress.NewService(database.NewMemoryStore(database.DefaultSeed()))
	s := New(config.DefaultConfig().Scheduler, notifier, sessions, svc, logger.Nop())
	s.now = func() time.Time { return time.Date(2024, 3, 1, hour, 0, 0, 0, time.UTC) }
	return s, notifier
}

func TestSendDigests(t *testing.T) {
	s, notifier := newScheduler(t, 9)

	sent := s.SendDigests(context.Background())
	assert.Equal(t, 2, sent)
	assert.Equal(t, 38, notifier.digests[100].CompletionPercentage)
	assert.Equal(t, 0, notifier.digests[200].CompletedModules)
}

func TestSendDigests_OutsideWindow(t *testing.T) {
	s, notifier := newScheduler(t, 3)

	assert.Equal(t, 0, s.SendDigests(context.Background()))
	assert.Empty(t, notifier.digests)
}

func TestSendDigests_ContinuesAfterFailure(t *testing.T) {
	s, notifier := newScheduler(t, 22)
	notifier.failFor = 100

	assert.Equal(t, 1, s.SendDigests(context.Background()))
	assert.Contains(t, notifier.digests, int64(200))
}

func TestRunManualCheck_UnknownChat(t *testing.T) {
	s, _ := newScheduler(t, 9)
	assert.Error(t, s.RunManualCheck(context.Background(), 999))
}

func TestStartStop(t *testing.T) {
	s, _ := newScheduler(t, 9)
	require.NoError(t, s.Start())
	s.Stop()
}
