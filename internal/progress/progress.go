package progress

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/example/skillbuilder/internal/database"
	"github.com/example/skillbuilder/pkg/models"
)

// ErrInvalidInput is returned for an empty user id
var ErrInvalidInput = errors.New("invalid input")

// Service aggregates and updates learning progress
type Service struct {
	store database.Store
	now   func() time.Time
}

// NewService creates a progress service over store
func NewService(store database.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock replaces the clock used for completion timestamps
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Stats summarizes a user's progress over the whole catalog.
// NotStartedModules is total minus the user's records and can go negative
// when records point at modules that no longer exist.
func (s *Service) Stats(ctx context.Context, userID string) (models.ProgressStats, error) {
	modules, err := s.store.Modules(ctx)
	if err != nil {
		return models.ProgressStats{}, err
	}
	records, err := s.store.ProgressByUser(ctx, userID)
	if err != nil {
		return models.ProgressStats{}, err
	}

	stats := models.ProgressStats{TotalModules: len(modules)}
	for _, r := range records {
		if r.IsCompleted {
			stats.CompletedModules++
		} else {
			stats.InProgressModules++
		}
	}
	stats.NotStartedModules = stats.TotalModules - stats.CompletedModules - stats.InProgressModules

	if stats.TotalModules > 0 {
		stats.HasData = true
		stats.CompletionPercentage = Percentage(stats.CompletedModules, stats.TotalModules)
	}
	return stats, nil
}

// CompletedByDomain counts, for every domain, its modules and the ones the
// user has completed
func (s *Service) CompletedByDomain(ctx context.Context, userID string) (map[int64]models.DomainCompletion, error) {
	domains, err := s.store.Domains(ctx)
	if err != nil {
		return nil, err
	}
	modules, err := s.store.Modules(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ProgressByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make(map[int64]models.DomainCompletion, len(domains))
	for _, d := range domains {
		result[d.ID] = models.DomainCompletion{}
	}

	domainOf := make(map[int64]int64, len(modules))
	for _, m := range modules {
		domainOf[m.ID] = m.DomainID
		if c, ok := result[m.DomainID]; ok {
			c.Total++
			result[m.DomainID] = c
		}
	}

	for _, r := range records {
		if !r.IsCompleted {
			continue
		}
		domainID, ok := domainOf[r.ModuleID]
		if !ok {
			continue
		}
		if c, ok := result[domainID]; ok {
			c.Completed++
			result[domainID] = c
		}
	}
	return result, nil
}

// Breakdown returns per-domain completion in domain order, ready for charts
func (s *Service) Breakdown(ctx context.Context, userID string) ([]models.DomainProgress, error) {
	domains, err := s.store.Domains(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.CompletedByDomain(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.DomainProgress, 0, len(domains))
	for _, d := range domains {
		c := counts[d.ID]
		out = append(out, models.DomainProgress{
			DomainID:   d.ID,
			Name:       d.Name,
			Completed:  c.Completed,
			Total:      c.Total,
			Percentage: Percentage(c.Completed, c.Total),
		})
	}
	return out, nil
}

// Update marks a module completed or not completed for a user, creating the
// record on first use. Unknown modules are rejected with database.ErrNotFound.
func (s *Service) Update(ctx context.Context, userID string, moduleID int64, completed bool) (*models.UserProgress, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if _, err := s.store.ModuleByID(ctx, moduleID); err != nil {
		return nil, fmt.Errorf("module %d: %w", moduleID, err)
	}
	return s.store.UpdateProgress(ctx, userID, moduleID, completed, s.now())
}

// Percentage rounds part/total*100 half up, returning 0 for an empty total
func Percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(part)/float64(total)*100 + 0.5))
}
