package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/skillbuilder/pkg/models"
)

// MemoryStore keeps the registry in process memory. State is lost on restart.
type MemoryStore struct {
	mu sync.RWMutex

	domains     []models.Domain
	levels      []models.MasteryLevel
	modules     []models.Module
	quizzes     []models.Quiz
	progress    map[models.ProgressKey]*models.UserProgress
	progressMax int64
	quizResults []models.UserQuizResult
	posts       []models.ForumPost
	comments    []models.ForumComment
}

// NewMemoryStore creates a store holding a copy of seed
func NewMemoryStore(seed Seed) *MemoryStore {
	s := &MemoryStore{
		domains:     append([]models.Domain(nil), seed.Domains...),
		levels:      append([]models.MasteryLevel(nil), seed.Levels...),
		modules:     append([]models.Module(nil), seed.Modules...),
		quizResults: append([]models.UserQuizResult(nil), seed.QuizResults...),
		posts:       append([]models.ForumPost(nil), seed.Posts...),
		comments:    append([]models.ForumComment(nil), seed.Comments...),
		progress:    make(map[models.ProgressKey]*models.UserProgress, len(seed.Progress)),
	}
	for _, q := range seed.Quizzes {
		s.quizzes = append(s.quizzes, copyQuiz(q))
	}
	for _, p := range seed.Progress {
		record := p
		s.progress[p.Key()] = &record
		if p.ID > s.progressMax {
			s.progressMax = p.ID
		}
	}
	return s
}

func copyQuiz(q models.Quiz) models.Quiz {
	out := q
	out.Questions = make([]models.QuizQuestion, len(q.Questions))
	for i, question := range q.Questions {
		question.Answers = append([]models.QuizAnswer(nil), question.Answers...)
		out.Questions[i] = question
	}
	return out
}

func (s *MemoryStore) Domains(ctx context.Context) ([]models.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Domain(nil), s.domains...), nil
}

func (s *MemoryStore) DomainByID(ctx context.Context, id int64) (*models.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.domains {
		if d.ID == id {
			domain := d
			return &domain, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) AddDomain(ctx context.Context, name string, description *string) (*models.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	for _, d := range s.domains {
		if d.ID > maxID {
			maxID = d.ID
		}
	}
	domain := models.Domain{ID: maxID + 1, Name: name, Description: description}
	s.domains = append(s.domains, domain)
	return &domain, nil
}

func (s *MemoryStore) MasteryLevels(ctx context.Context) ([]models.MasteryLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.MasteryLevel(nil), s.levels...), nil
}

func (s *MemoryStore) MasteryLevelByID(ctx context.Context, id int64) (*models.MasteryLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.levels {
		if l.ID == id {
			level := l
			return &level, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Modules(ctx context.Context) ([]models.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Module(nil), s.modules...), nil
}

func (s *MemoryStore) ModuleByID(ctx context.Context, id int64) (*models.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.modules {
		if m.ID == id {
			module := m
			return &module, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ModulesByDomainAndLevel(ctx context.Context, domainID, levelID int64) ([]models.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Module
	for _, m := range s.modules {
		if m.DomainID == domainID && m.MasteryLevelID == levelID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (s *MemoryStore) AddModule(ctx context.Context, module *models.Module) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if module.ID == 0 {
		var maxID int64
		for _, m := range s.modules {
			if m.ID > maxID {
				maxID = m.ID
			}
		}
		module.ID = maxID + 1
	}
	s.modules = append(s.modules, *module)
	return nil
}

func (s *MemoryStore) QuizByID(ctx context.Context, id int64) (*models.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.quizzes {
		if q.ID == id {
			quiz := copyQuiz(q)
			return &quiz, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) QuizzesByModule(ctx context.Context, moduleID int64) ([]models.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Quiz
	for _, q := range s.quizzes {
		if q.ModuleID == moduleID {
			out = append(out, copyQuiz(q))
		}
	}
	return out, nil
}

func (s *MemoryStore) ProgressByUser(ctx context.Context, userID string) ([]models.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.UserProgress
	for key, p := range s.progress {
		if key.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ProgressByModule(ctx context.Context, userID string, moduleID int64) (*models.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.progress[models.ProgressKey{UserID: userID, ModuleID: moduleID}]
	if !ok {
		return nil, ErrNotFound
	}
	record := *p
	return &record, nil
}

func (s *MemoryStore) UpdateProgress(ctx context.Context, userID string, moduleID int64, completed bool, at time.Time) (*models.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.ProgressKey{UserID: userID, ModuleID: moduleID}
	p, ok := s.progress[key]
	if !ok {
		s.progressMax++
		p = &models.UserProgress{ID: s.progressMax, UserID: userID, ModuleID: moduleID}
		s.progress[key] = p
	}
	p.IsCompleted = completed
	p.CompletedAt = completedAt(completed, at)

	record := *p
	return &record, nil
}

func (s *MemoryStore) SaveQuizResult(ctx context.Context, userID string, quizID int64, score int, at time.Time) (*models.UserQuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	for _, r := range s.quizResults {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	result := models.UserQuizResult{
		ID:          maxID + 1,
		UserID:      userID,
		QuizID:      quizID,
		Score:       score,
		CompletedAt: at.UTC(),
	}
	s.quizResults = append(s.quizResults, result)
	return &result, nil
}

func (s *MemoryStore) QuizResultsByUser(ctx context.Context, userID string) ([]models.UserQuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.UserQuizResult
	for _, r := range s.quizResults {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) ForumPosts(ctx context.Context, domainID *int64) ([]models.ForumPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ForumPost
	for _, p := range s.posts {
		if domainID != nil && (p.DomainID == nil || *p.DomainID != *domainID) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) ForumPostByID(ctx context.Context, id int64) (*models.ForumPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == id {
			post := p
			return &post, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateForumPost(ctx context.Context, post *models.ForumPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	for _, p := range s.posts {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	post.ID = maxID + 1
	s.posts = append(s.posts, *post)
	return nil
}

func (s *MemoryStore) ForumComments(ctx context.Context, postID int64) ([]models.ForumComment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.ForumComment
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) AddForumComment(ctx context.Context, comment *models.ForumComment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxID int64
	for _, c := range s.comments {
		if c.ID > maxID {
			maxID = c.ID
		}
	}
	comment.ID = maxID + 1
	s.comments = append(s.comments, *comment)
	return nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}
