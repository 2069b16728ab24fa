package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/skillbuilder/pkg/models"
	"github.com/jmoiron/sqlx"
)

const progressColumns = "id, user_id, module_id, is_completed, completed_at"

const insertQuizResultQuery = `
	INSERT INTO user_quiz_results (id, user_id, quiz_id, score, completed_at)
	VALUES (:id, :user_id, :quiz_id, :score, :completed_at)`

// ProgressByUser returns every progress record of a user
func (s *SQLStore) ProgressByUser(ctx context.Context, userID string) ([]models.UserProgress, error) {
	var progress []models.UserProgress
	query := s.db.Rebind("SELECT " + progressColumns + " FROM user_progress WHERE user_id = ? ORDER BY id")
	if err := s.db.SelectContext(ctx, &progress, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}
	return progress, nil
}

// ProgressByModule returns the record of (userID, moduleID) or ErrNotFound
func (s *SQLStore) ProgressByModule(ctx context.Context, userID string, moduleID int64) (*models.UserProgress, error) {
	var progress models.UserProgress
	query := s.db.Rebind("SELECT " + progressColumns + " FROM user_progress WHERE user_id = ? AND module_id = ?")
	if err := s.db.GetContext(ctx, &progress, query, userID, moduleID); err != nil {
		return nil, notFound(err)
	}
	return &progress, nil
}

// UpdateProgress upserts the record keyed by (user_id, module_id). The
// UNIQUE constraint keeps a single record per pair.
func (s *SQLStore) UpdateProgress(ctx context.Context, userID string, moduleID int64, completed bool, at time.Time) (*models.UserProgress, error) {
	progress := models.UserProgress{
		UserID:      userID,
		ModuleID:    moduleID,
		IsCompleted: completed,
		CompletedAt: completedAt(completed, at),
	}

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		id, err := nextID(ctx, tx, "user_progress")
		if err != nil {
			return err
		}
		progress.ID = id

		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO user_progress (id, user_id, module_id, is_completed, completed_at)
			VALUES (:id, :user_id, :module_id, :is_completed, :completed_at)
			ON CONFLICT (user_id, module_id) DO UPDATE SET
				is_completed = excluded.is_completed,
				completed_at = excluded.completed_at`, progress)
		if err != nil {
			return err
		}

		query := tx.Rebind("SELECT " + progressColumns + " FROM user_progress WHERE user_id = ? AND module_id = ?")
		return tx.GetContext(ctx, &progress, query, userID, moduleID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update user progress: %w", err)
	}
	return &progress, nil
}

// SaveQuizResult appends a quiz result with the next free id
func (s *SQLStore) SaveQuizResult(ctx context.Context, userID string, quizID int64, score int, at time.Time) (*models.UserQuizResult, error) {
	result := models.UserQuizResult{UserID: userID, QuizID: quizID, Score: score, CompletedAt: at.UTC()}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		id, err := nextID(ctx, tx, "user_quiz_results")
		if err != nil {
			return err
		}
		result.ID = id
		_, err = tx.NamedExecContext(ctx, insertQuizResultQuery, result)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save quiz result: %w", err)
	}
	return &result, nil
}

// QuizResultsByUser returns a user's quiz results in insertion order
func (s *SQLStore) QuizResultsByUser(ctx context.Context, userID string) ([]models.UserQuizResult, error) {
	var results []models.UserQuizResult
	query := s.db.Rebind("SELECT id, user_id, quiz_id, score, completed_at FROM user_quiz_results WHERE user_id = ? ORDER BY id")
	if err := s.db.SelectContext(ctx, &results, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get quiz results: %w", err)
	}
	return results, nil
}
