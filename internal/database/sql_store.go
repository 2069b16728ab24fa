package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLStore implements Store on top of SQLite or PostgreSQL
type SQLStore struct {
	db *sqlx.DB
}

// NewSQLStore wraps an open connection. The seed is inserted when the
// domains table is empty.
func NewSQLStore(ctx context.Context, db *sqlx.DB, seed Seed) (*SQLStore, error) {
	s := &SQLStore{db: db}

	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM domains"); err != nil {
		return nil, fmt.Errorf("failed to count domains: %w", err)
	}
	if count == 0 {
		if err := s.insertSeed(ctx, seed); err != nil {
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}
	return s, nil
}

// Open returns the store selected by driver. The memory driver ignores dsn.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	if driver == "" || driver == DriverMemory {
		return NewMemoryStore(DefaultSeed()), nil
	}
	db, err := Connect(driver, dsn)
	if err != nil {
		return nil, err
	}
	store, err := NewSQLStore(ctx, db, DefaultSeed())
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) insertSeed(ctx context.Context, seed Seed) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, d := range seed.Domains {
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO domains (id, name, description, icon) VALUES (:id, :name, :description, :icon)`, d); err != nil {
				return fmt.Errorf("domain %d: %w", d.ID, err)
			}
		}
		for _, l := range seed.Levels {
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO mastery_levels (id, name, description) VALUES (:id, :name, :description)`, l); err != nil {
				return fmt.Errorf("mastery level %d: %w", l.ID, err)
			}
		}
		for _, m := range seed.Modules {
			if _, err := tx.NamedExecContext(ctx, insertModuleQuery, m); err != nil {
				return fmt.Errorf("module %d: %w", m.ID, err)
			}
		}
		for _, q := range seed.Quizzes {
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO quizzes (id, module_id, title) VALUES (:id, :module_id, :title)`, q); err != nil {
				return fmt.Errorf("quiz %d: %w", q.ID, err)
			}
			for _, question := range q.Questions {
				if _, err := tx.NamedExecContext(ctx,
					`INSERT INTO quiz_questions (id, quiz_id, question, order_index)
					 VALUES (:id, :quiz_id, :question, :order_index)`, question); err != nil {
					return fmt.Errorf("quiz question %d: %w", question.ID, err)
				}
				for _, a := range question.Answers {
					if _, err := tx.NamedExecContext(ctx,
						`INSERT INTO quiz_answers (id, question_id, answer, is_correct)
						 VALUES (:id, :question_id, :answer, :is_correct)`, a); err != nil {
						return fmt.Errorf("quiz answer %d: %w", a.ID, err)
					}
				}
			}
		}
		for _, p := range seed.Progress {
			if _, err := tx.NamedExecContext(ctx,
				`INSERT INTO user_progress (id, user_id, module_id, is_completed, completed_at)
				 VALUES (:id, :user_id, :module_id, :is_completed, :completed_at)`, p); err != nil {
				return fmt.Errorf("progress %d: %w", p.ID, err)
			}
		}
		for _, r := range seed.QuizResults {
			if _, err := tx.NamedExecContext(ctx, insertQuizResultQuery, r); err != nil {
				return fmt.Errorf("quiz result %d: %w", r.ID, err)
			}
		}
		for _, p := range seed.Posts {
			if _, err := tx.NamedExecContext(ctx, insertPostQuery, p); err != nil {
				return fmt.Errorf("forum post %d: %w", p.ID, err)
			}
		}
		for _, c := range seed.Comments {
			if _, err := tx.NamedExecContext(ctx, insertCommentQuery, c); err != nil {
				return fmt.Errorf("forum comment %d: %w", c.ID, err)
			}
		}
		return nil
	})
}

// inTx runs fn in a transaction, rolling back when fn fails
func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// nextID returns max(id) + 1 for table, or 1 when the table is empty
func nextID(ctx context.Context, tx *sqlx.Tx, table string) (int64, error) {
	var id int64
	if err := tx.GetContext(ctx, &id, "SELECT COALESCE(MAX(id), 0) + 1 FROM "+table); err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", table, err)
	}
	return id, nil
}

// notFound maps sql.ErrNoRows to ErrNotFound
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
