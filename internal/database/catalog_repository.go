package database

import (
	"context"
	"fmt"

	"github.com/example/skillbuilder/pkg/models"
	"github.com/jmoiron/sqlx"
)

const insertModuleQuery = `
	INSERT INTO modules (id, domain_id, mastery_level_id, title, description, order_index)
	VALUES (:id, :domain_id, :mastery_level_id, :title, :description, :order_index)`

// Domains returns all domains ordered by id
func (s *SQLStore) Domains(ctx context.Context) ([]models.Domain, error) {
	var domains []models.Domain
	if err := s.db.SelectContext(ctx, &domains, "SELECT id, name, description, icon FROM domains ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to get domains: %w", err)
	}
	return domains, nil
}

// DomainByID returns a domain or ErrNotFound
func (s *SQLStore) DomainByID(ctx context.Context, id int64) (*models.Domain, error) {
	var domain models.Domain
	query := s.db.Rebind("SELECT id, name, description, icon FROM domains WHERE id = ?")
	if err := s.db.GetContext(ctx, &domain, query, id); err != nil {
		return nil, notFound(err)
	}
	return &domain, nil
}

// AddDomain inserts a domain with the next free id
func (s *SQLStore) AddDomain(ctx context.Context, name string, description *string) (*models.Domain, error) {
	domain := models.Domain{Name: name, Description: description}
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		id, err := nextID(ctx, tx, "domains")
		if err != nil {
			return err
		}
		domain.ID = id
		_, err = tx.NamedExecContext(ctx,
			`INSERT INTO domains (id, name, description, icon) VALUES (:id, :name, :description, :icon)`, domain)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add domain: %w", err)
	}
	return &domain, nil
}

// MasteryLevels returns all levels ordered by id
func (s *SQLStore) MasteryLevels(ctx context.Context) ([]models.MasteryLevel, error) {
	var levels []models.MasteryLevel
	if err := s.db.SelectContext(ctx, &levels, "SELECT id, name, description FROM mastery_levels ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to get mastery levels: %w", err)
	}
	return levels, nil
}

// MasteryLevelByID returns a level or ErrNotFound
func (s *SQLStore) MasteryLevelByID(ctx context.Context, id int64) (*models.MasteryLevel, error) {
	var level models.MasteryLevel
	query := s.db.Rebind("SELECT id, name, description FROM mastery_levels WHERE id = ?")
	if err := s.db.GetContext(ctx, &level, query, id); err != nil {
		return nil, notFound(err)
	}
	return &level, nil
}

const moduleColumns = "id, domain_id, mastery_level_id, title, description, order_index"

// Modules returns all modules ordered by id
func (s *SQLStore) Modules(ctx context.Context) ([]models.Module, error) {
	var modules []models.Module
	if err := s.db.SelectContext(ctx, &modules, "SELECT "+moduleColumns+" FROM modules ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to get modules: %w", err)
	}
	return modules, nil
}

// ModuleByID returns a module or ErrNotFound
func (s *SQLStore) ModuleByID(ctx context.Context, id int64) (*models.Module, error) {
	var module models.Module
	query := s.db.Rebind("SELECT " + moduleColumns + " FROM modules WHERE id = ?")
	if err := s.db.GetContext(ctx, &module, query, id); err != nil {
		return nil, notFound(err)
	}
	return &module, nil
}

// ModulesByDomainAndLevel returns the modules of one domain and level in order
func (s *SQLStore) ModulesByDomainAndLevel(ctx context.Context, domainID, levelID int64) ([]models.Module, error) {
	var modules []models.Module
	query := s.db.Rebind("SELECT " + moduleColumns + ` FROM modules
		WHERE domain_id = ? AND mastery_level_id = ?
		ORDER BY order_index, id`)
	if err := s.db.SelectContext(ctx, &modules, query, domainID, levelID); err != nil {
		return nil, fmt.Errorf("failed to get modules: %w", err)
	}
	return modules, nil
}

// AddModule inserts a module, allocating an id when module.ID is zero
func (s *SQLStore) AddModule(ctx context.Context, module *models.Module) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if module.ID == 0 {
			id, err := nextID(ctx, tx, "modules")
			if err != nil {
				return err
			}
			module.ID = id
		}
		if _, err := tx.NamedExecContext(ctx, insertModuleQuery, module); err != nil {
			return fmt.Errorf("failed to add module: %w", err)
		}
		return nil
	})
}

// QuizByID returns a quiz with its questions and answers
func (s *SQLStore) QuizByID(ctx context.Context, id int64) (*models.Quiz, error) {
	var quiz models.Quiz
	query := s.db.Rebind("SELECT id, module_id, title FROM quizzes WHERE id = ?")
	if err := s.db.GetContext(ctx, &quiz, query, id); err != nil {
		return nil, notFound(err)
	}
	if err := s.loadQuestions(ctx, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// QuizzesByModule returns the quizzes attached to a module
func (s *SQLStore) QuizzesByModule(ctx context.Context, moduleID int64) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	query := s.db.Rebind("SELECT id, module_id, title FROM quizzes WHERE module_id = ? ORDER BY id")
	if err := s.db.SelectContext(ctx, &quizzes, query, moduleID); err != nil {
		return nil, fmt.Errorf("failed to get quizzes: %w", err)
	}
	for i := range quizzes {
		if err := s.loadQuestions(ctx, &quizzes[i]); err != nil {
			return nil, err
		}
	}
	return quizzes, nil
}

func (s *SQLStore) loadQuestions(ctx context.Context, quiz *models.Quiz) error {
	query := s.db.Rebind(`SELECT id, quiz_id, question, order_index FROM quiz_questions
		WHERE quiz_id = ? ORDER BY order_index, id`)
	if err := s.db.SelectContext(ctx, &quiz.Questions, query, quiz.ID); err != nil {
		return fmt.Errorf("failed to get quiz questions: %w", err)
	}
	answersQuery := s.db.Rebind(`SELECT id, question_id, answer, is_correct FROM quiz_answers
		WHERE question_id = ? ORDER BY id`)
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		if err := s.db.SelectContext(ctx, &q.Answers, answersQuery, q.ID); err != nil {
			return fmt.Errorf("failed to get quiz answers: %w", err)
		}
	}
	return nil
}
