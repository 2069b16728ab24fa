package forum

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/skillbuilder/internal/database"
	"github.com/example/skillbuilder/pkg/models"
)

// ErrInvalidInput is returned when a post or comment is missing a field
var ErrInvalidInput = errors.New("invalid input")

// PostSummary is a post as shown in the forum listing
type PostSummary struct {
	models.ForumPost
	DomainName   string `json:"domain_name,omitempty"`
	CommentCount int    `json:"comment_count"`
}

// Thread is a post with its domain and comments
type Thread struct {
	Post     models.ForumPost      `json:"post"`
	Domain   *models.Domain        `json:"domain,omitempty"`
	Comments []models.ForumComment `json:"comments"`
}

// Service manages forum posts and comments. Vote counters are read-only.
type Service struct {
	store database.Store
	now   func() time.Time
}

// NewService creates a forum service over store
func NewService(store database.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock replaces the clock used for created_at/updated_at
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Posts lists posts newest first. A nil domainID lists every post.
func (s *Service) Posts(ctx context.Context, domainID *int64) ([]PostSummary, error) {
	posts, err := s.store.ForumPosts(ctx, domainID)
	if err != nil {
		return nil, err
	}
	names, err := s.domainNames(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PostSummary, 0, len(posts))
	for _, p := range posts {
		comments, err := s.store.ForumComments(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		summary := PostSummary{ForumPost: p, CommentCount: len(comments)}
		if p.DomainID != nil {
			summary.DomainName = names[*p.DomainID]
		}
		out = append(out, summary)
	}
	return out, nil
}

// Thread returns a post with its comments
func (s *Service) Thread(ctx context.Context, postID int64) (*Thread, error) {
	post, err := s.store.ForumPostByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}
	comments, err := s.store.ForumComments(ctx, postID)
	if err != nil {
		return nil, err
	}

	thread := &Thread{Post: *post, Comments: comments}
	if post.DomainID != nil {
		domain, err := s.store.DomainByID(ctx, *post.DomainID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		thread.Domain = domain
	}
	return thread, nil
}

// CreatePost publishes a new post. Title and content are required and the
// domain, when given, must exist.
func (s *Service) CreatePost(ctx context.Context, userID, title, content string, domainID *int64) (*models.ForumPost, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	switch {
	case userID == "":
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	case title == "":
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	case content == "":
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if domainID != nil {
		if _, err := s.store.DomainByID(ctx, *domainID); err != nil {
			return nil, fmt.Errorf("domain %d: %w", *domainID, err)
		}
	}

	now := s.now().UTC()
	post := &models.ForumPost{
		UserID:    userID,
		Title:     title,
		Content:   content,
		DomainID:  domainID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateForumPost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// AddComment replies to an existing post
func (s *Service) AddComment(ctx context.Context, userID string, postID int64, content string) (*models.ForumComment, error) {
	content = strings.TrimSpace(content)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: comment is empty", ErrInvalidInput)
	}
	if _, err := s.store.ForumPostByID(ctx, postID); err != nil {
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}

	now := s.now().UTC()
	comment := &models.ForumComment{
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.AddForumComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *Service) domainNames(ctx context.Context) (map[int64]string, error) {
	domains, err := s.store.Domains(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(domains))
	for _, d := range domains {
		names[d.ID] = d.Name
	}
	return names, nil
}

// FormatDate renders a timestamp the way the forum shows it, e.g. "Jun 10, 2023"
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}
