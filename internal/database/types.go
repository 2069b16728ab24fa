package database

import (
	"context"
	"errors"
	"time"

	"github.com/example/skillbuilder/pkg/models"
)

// ErrNotFound is returned when a lookup matches no record
var ErrNotFound = errors.New("not found")

// Store is the registry every service reads from and writes to.
// MemoryStore and SQLStore implement it with the same semantics.
type Store interface {
	Domains(ctx context.Context) ([]models.Domain, error)
	DomainByID(ctx context.Context, id int64) (*models.Domain, error)
	// AddDomain appends a domain with id = max(existing ids) + 1
	AddDomain(ctx context.Context, name string, description *string) (*models.Domain, error)

	MasteryLevels(ctx context.Context) ([]models.MasteryLevel, error)
	MasteryLevelByID(ctx context.Context, id int64) (*models.MasteryLevel, error)

	Modules(ctx context.Context) ([]models.Module, error)
	ModuleByID(ctx context.Context, id int64) (*models.Module, error)
	ModulesByDomainAndLevel(ctx context.Context, domainID, levelID int64) ([]models.Module, error)
	// AddModule appends a module; a zero ID is replaced by max(existing ids) + 1
	AddModule(ctx context.Context, module *models.Module) error

	QuizByID(ctx context.Context, id int64) (*models.Quiz, error)
	QuizzesByModule(ctx context.Context, moduleID int64) ([]models.Quiz, error)

	ProgressByUser(ctx context.Context, userID string) ([]models.UserProgress, error)
	ProgressByModule(ctx context.Context, userID string, moduleID int64) (*models.UserProgress, error)
	// UpdateProgress creates or updates the single record of (userID, moduleID)
	UpdateProgress(ctx context.Context, userID string, moduleID int64, completed bool, at time.Time) (*models.UserProgress, error)

	SaveQuizResult(ctx context.Context, userID string, quizID int64, score int, at time.Time) (*models.UserQuizResult, error)
	QuizResultsByUser(ctx context.Context, userID string) ([]models.UserQuizResult, error)

	// ForumPosts lists posts, newest first, optionally filtered by domain
	ForumPosts(ctx context.Context, domainID *int64) ([]models.ForumPost, error)
	ForumPostByID(ctx context.Context, id int64) (*models.ForumPost, error)
	CreateForumPost(ctx context.Context, post *models.ForumPost) error
	ForumComments(ctx context.Context, postID int64) ([]models.ForumComment, error)
	AddForumComment(ctx context.Context, comment *models.ForumComment) error

	Close() error
}

// completedAt returns the timestamp stored with a progress record
func completedAt(completed bool, at time.Time) *time.Time {
	if !completed {
		return nil
	}
	t := at.UTC()
	return &t
}
