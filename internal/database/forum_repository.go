package database

import (
	"context"
	"fmt"

	"github.com/example/skillbuilder/pkg/models"
	"github.com/jmoiron/sqlx"
)

const postColumns = "id, user_id, title, content, domain_id, upvotes, downvotes, created_at, updated_at"

const insertPostQuery = `
	INSERT INTO forum_posts (id, user_id, title, content, domain_id, upvotes, downvotes, created_at, updated_at)
	VALUES (:id, :user_id, :title, :content, :domain_id, :upvotes, :downvotes, :created_at, :updated_at)`

const insertCommentQuery = `
	INSERT INTO forum_comments (id, post_id, user_id, content, upvotes, downvotes, created_at, updated_at)
	VALUES (:id, :post_id, :user_id, :content, :upvotes, :downvotes, :created_at, :updated_at)`

// ForumPosts lists posts newest first, optionally for one domain
func (s *SQLStore) ForumPosts(ctx context.Context, domainID *int64) ([]models.ForumPost, error) {
	var (
		posts []models.ForumPost
		err   error
	)
	if domainID == nil {
		err = s.db.SelectContext(ctx, &posts, "SELECT "+postColumns+" FROM forum_posts ORDER BY created_at DESC, id DESC")
	} else {
		query := s.db.Rebind("SELECT " + postColumns + " FROM forum_posts WHERE domain_id = ? ORDER BY created_at DESC, id DESC")
		err = s.db.SelectContext(ctx, &posts, query, *domainID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get forum posts: %w", err)
	}
	return posts, nil
}

// ForumPostByID returns a post or ErrNotFound
func (s *SQLStore) ForumPostByID(ctx context.Context, id int64) (*models.ForumPost, error) {
	var post models.ForumPost
	query := s.db.Rebind("SELECT " + postColumns + " FROM forum_posts WHERE id = ?")
	if err := s.db.GetContext(ctx, &post, query, id); err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// CreateForumPost inserts post and sets its id
func (s *SQLStore) CreateForumPost(ctx context.Context, post *models.ForumPost) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		id, err := nextID(ctx, tx, "forum_posts")
		if err != nil {
			return err
		}
		post.ID = id
		if _, err := tx.NamedExecContext(ctx, insertPostQuery, post); err != nil {
			return fmt.Errorf("failed to create forum post: %w", err)
		}
		return nil
	})
}

// ForumComments returns the comments of a post, oldest first
func (s *SQLStore) ForumComments(ctx context.Context, postID int64) ([]models.ForumComment, error) {
	var comments []models.ForumComment
	query := s.db.Rebind(`SELECT id, post_id, user_id, content, upvotes, downvotes, created_at, updated_at
		FROM forum_comments WHERE post_id = ? ORDER BY id`)
	if err := s.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("failed to get forum comments: %w", err)
	}
	return comments, nil
}

// AddForumComment inserts comment and sets its id
func (s *SQLStore) AddForumComment(ctx context.Context, comment *models.ForumComment) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		id, err := nextID(ctx, tx, "forum_comments")
		if err != nil {
			return err
		}
		comment.ID = id
		if _, err := tx.NamedExecContext(ctx, insertCommentQuery, comment); err != nil {
			return fmt.Errorf("failed to add forum comment: %w", err)
		}
		return nil
	})
}
