package excel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/skillbuilder/internal/database"
	"github.com/example/skillbuilder/internal/progress"
	"github.com/example/skillbuilder/internal/quiz"
	"github.com/example/skillbuilder/pkg/models"
)

// Reporter gathers a user's progress and renders it as a workbook
type Reporter struct {
	progress *progress.Service
	quizzes  *quiz.Service
	now      func() time.Time
}

// NewReporter creates a reporter over the progress and quiz services
func NewReporter(progressSvc *progress.Service, quizSvc *quiz.Service) *Reporter {
	return &Reporter{progress: progressSvc, quizzes: quizSvc, now: time.Now}
}

// Collect loads the data of user's report
func (r *Reporter) Collect(ctx context.Context, user models.User) (ReportData, error) {
	stats, err := r.progress.Stats(ctx, user.ID)
	if err != nil {
		return ReportData{}, fmt.Errorf("failed to load stats: %w", err)
	}
	domains, err := r.progress.Breakdown(ctx, user.ID)
	if err != nil {
		return ReportData{}, fmt.Errorf("failed to load domain progress: %w", err)
	}
	results, err := r.quizzes.Results(ctx, user.ID)
	if err != nil {
		return ReportData{}, fmt.Errorf("failed to load quiz results: %w", err)
	}

	data := ReportData{User: user, GeneratedAt: r.now(), Stats: stats, Domains: domains}
	for _, res := range results {
		title := fmt.Sprintf("Quiz #%d", res.QuizID)
		q, err := r.quizzes.Quiz(ctx, res.QuizID)
		switch {
		case err == nil:
			title = q.Title
		case !errors.Is(err, database.ErrNotFound):
			return ReportData{}, err
		}
		data.QuizResults = append(data.QuizResults, QuizResultRow{Title: title, Score: res.Score, CompletedAt: res.CompletedAt})
	}
	return data, nil
}

// Generate returns the report bytes and the file name to offer them under
func (r *Reporter) Generate(ctx context.Context, user models.User) ([]byte, string, error) {
	data, err := r.Collect(ctx, user)
	if err != nil {
		return nil, "", err
	}
	content, err := RenderReport(data)
	if err != nil {
		return nil, "", err
	}
	return content, ReportFileName(user, data.GeneratedAt), nil
}
