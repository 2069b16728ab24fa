package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/example/skillbuilder/internal/config"
	"github.com/example/skillbuilder/internal/logger"
	"github.com/example/skillbuilder/internal/progress"
	"github.com/example/skillbuilder/pkg/models"
	"github.com/go-co-op/gocron"
)

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	sessions  SessionSource
	progress  *progress.Service
	cfg       config.SchedulerConfig
	log       *logger.Logger
	now       func() time.Time
}

// Notifier delivers the daily digest to a chat
type Notifier interface {
	SendDigest(chatID int64, user models.User, stats models.ProgressStats) error
}

// SessionSource lists the chats with a signed-in user
type SessionSource interface {
	ChatIDs() []int64
	Load(chatID int64) (*models.User, bool)
}

// New creates a new scheduler instance
func New(cfg config.SchedulerConfig, notifier Notifier, sessions SessionSource, progressSvc *progress.Service, log *logger.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		sessions:  sessions,
		progress:  progressSvc,
		cfg:       cfg,
		log:       log.With("component", "scheduler"),
		now:       time.Now,
	}
}

// Start schedules the daily digest and runs the scheduler in the background
func (s *Scheduler) Start() error {
	at := fmt.Sprintf("%02d:00", s.cfg.DigestHour)
	if _, err := s.scheduler.Every(1).Day().At(at).Do(s.runDigest); err != nil {
		return fmt.Errorf("failed to schedule digest: %w", err)
	}
	s.scheduler.StartAsync()
	s.log.Info("Scheduler started", "digest_at", at)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	sent := s.SendDigests(ctx)
	s.log.Info("Digest finished", "sent", sent)
}

// InNotificationWindow reports whether hour lies in the configured window,
// both ends included
func (s *Scheduler) InNotificationWindow(hour int) bool {
	return hour >= s.cfg.NotificationStartHour && hour <= s.cfg.NotificationEndHour
}

// SendDigests sends the progress digest to every signed-in chat and returns
// how many were delivered. Nothing is sent outside the notification window.
func (s *Scheduler) SendDigests(ctx context.Context) int {
	currentHour := s.now().Hour()
	if !s.InNotificationWindow(currentHour) {
		s.log.Info("Outside notification hours, skipping digest",
			"hour", currentHour, "start", s.cfg.NotificationStartHour, "end", s.cfg.NotificationEndHour)
		return 0
	}

	sent := 0
	for _, chatID := range s.sessions.ChatIDs() {
		if ctx.Err() != nil {
			break
		}
		if err := s.RunManualCheck(ctx, chatID); err != nil {
			s.log.Warn("Error sending digest", "chat_id", chatID, "error", err)
			continue
		}
		sent++
	}
	return sent
}

// RunManualCheck sends the digest to one chat immediately
func (s *Scheduler) RunManualCheck(ctx context.Context, chatID int64) error {
	user, ok := s.sessions.Load(chatID)
	if !ok {
		return fmt.Errorf("chat %d has no signed-in user", chatID)
	}
	stats, err := s.progress.Stats(ctx, user.ID)
	if err != nil {
		return err
	}
	return s.notifier.SendDigest(chatID, *user, stats)
}
