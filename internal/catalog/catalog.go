package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/skillbuilder/internal/database"
	"github.com/example/skillbuilder/pkg/models"
)

// ErrInvalidInput is returned when a required field is missing
var ErrInvalidInput = errors.New("invalid input")

// Status of a module for one user
const (
	StatusCompleted  = "completed"
	StatusInProgress = "in progress"
	StatusNotStarted = "not started"
)

// ModuleStatus is a module joined with the caller's progress record
type ModuleStatus struct {
	models.Module
	Progress *models.UserProgress `json:"progress"`
}

// Status returns a label for the progress record
func (m ModuleStatus) Status() string {
	switch {
	case m.Progress == nil:
		return StatusNotStarted
	case m.Progress.IsCompleted:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// Service exposes domains, mastery levels and modules
type Service struct {
	store database.Store
}

// NewService creates a catalog service over store
func NewService(store database.Store) *Service {
	return &Service{store: store}
}

func (s *Service) Domains(ctx context.Context) ([]models.Domain, error) {
	return s.store.Domains(ctx)
}

func (s *Service) Domain(ctx context.Context, id int64) (*models.Domain, error) {
	domain, err := s.store.DomainByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("domain %d: %w", id, err)
	}
	return domain, nil
}

func (s *Service) MasteryLevels(ctx context.Context) ([]models.MasteryLevel, error) {
	return s.store.MasteryLevels(ctx)
}

func (s *Service) Module(ctx context.Context, id int64) (*models.Module, error) {
	module, err := s.store.ModuleByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("module %d: %w", id, err)
	}
	return module, nil
}

// DomainByName finds a domain ignoring case and surrounding spaces
func (s *Service) DomainByName(ctx context.Context, name string) (*models.Domain, error) {
	domains, err := s.store.Domains(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	for _, d := range domains {
		if strings.EqualFold(d.Name, name) {
			domain := d
			return &domain, nil
		}
	}
	return nil, fmt.Errorf("domain %q: %w", name, database.ErrNotFound)
}

// LevelByName finds a mastery level ignoring case and surrounding spaces
func (s *Service) LevelByName(ctx context.Context, name string) (*models.MasteryLevel, error) {
	levels, err := s.store.MasteryLevels(ctx)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	for _, l := range levels {
		if strings.EqualFold(l.Name, name) {
			level := l
			return &level, nil
		}
	}
	return nil, fmt.Errorf("mastery level %q: %w", name, database.ErrNotFound)
}

// Modules returns the modules of a domain and level in order, each with
// the user's progress record if one exists
func (s *Service) Modules(ctx context.Context, userID string, domainID, levelID int64) ([]ModuleStatus, error) {
	if _, err := s.Domain(ctx, domainID); err != nil {
		return nil, err
	}
	if _, err := s.store.MasteryLevelByID(ctx, levelID); err != nil {
		return nil, fmt.Errorf("mastery level %d: %w", levelID, err)
	}

	modules, err := s.store.ModulesByDomainAndLevel(ctx, domainID, levelID)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ProgressByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byModule := make(map[int64]models.UserProgress, len(records))
	for _, r := range records {
		byModule[r.ModuleID] = r
	}

	out := make([]ModuleStatus, 0, len(modules))
	for _, m := range modules {
		status := ModuleStatus{Module: m}
		if r, ok := byModule[m.ID]; ok {
			record := r
			status.Progress = &record
		}
		out = append(out, status)
	}
	return out, nil
}

// AddDomain creates a domain. The name is trimmed and must not be empty.
func (s *Service) AddDomain(ctx context.Context, name, description string) (*models.Domain, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: domain name is required", ErrInvalidInput)
	}
	var desc *string
	if d := strings.TrimSpace(description); d != "" {
		desc = &d
	}
	return s.store.AddDomain(ctx, name, desc)
}

// AddModule appends a module after checking its domain and level exist
func (s *Service) AddModule(ctx context.Context, module *models.Module) error {
	module.Title = strings.TrimSpace(module.Title)
	if module.Title == "" {
		return fmt.Errorf("%w: module title is required", ErrInvalidInput)
	}
	if _, err := s.Domain(ctx, module.DomainID); err != nil {
		return err
	}
	if _, err := s.store.MasteryLevelByID(ctx, module.MasteryLevelID); err != nil {
		return fmt.Errorf("mastery level %d: %w", module.MasteryLevelID, err)
	}
	return s.store.AddModule(ctx, module)
}

// ModulesIn returns the modules of a domain and level in order
func (s *Service) ModulesIn(ctx context.Context, domainID, levelID int64) ([]models.Module, error) {
	return s.store.ModulesByDomainAndLevel(ctx, domainID, levelID)
}
