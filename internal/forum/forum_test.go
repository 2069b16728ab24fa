package forum

import (
	"context"
	"testing"
	"time"

	"github.com/example/skillbuilder/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newService() *Service {
	return NewService(database.NewMemoryStore(database.DefaultSeed())).
		WithClock(func() time.Time { return fixedNow })
}

func TestPosts_ListsNewestFirstWithCounts(t *testing.T) {
	posts, err := newService().Posts(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "Best practices for React state management", posts[0].Title)
	assert.Equal(t, 0, posts[0].CommentCount)
	assert.Equal(t, "How to center a div?", posts[1].Title)
	assert.Equal(t, 1, posts[1].CommentCount)
	assert.Equal(t, "Web Development", posts[1].DomainName)
}

func TestPosts_FilterByDomain(t *testing.T) {
	svc := newService()
	web, devops := int64(1), int64(4)

	posts, err := svc.Posts(context.Background(), &web)
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	posts, err = svc.Posts(context.Background(), &devops)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestThread(t *testing.T) {
	svc := newService()

	thread, err := svc.Thread(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "How to center a div?", thread.Post.Title)
	require.NotNil(t, thread.Domain)
	assert.Equal(t, "Web Development", thread.Domain.Name)
	require.Len(t, thread.Comments, 1)
	assert.Equal(t, 3, thread.Comments[0].Upvotes)

	_, err = svc.Thread(context.Background(), 42)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	devops := int64(4)

	post, err := svc.CreatePost(ctx, "user-1", " Docker volumes ", "How do volumes persist data?", &devops)
	require.NoError(t, err)
	assert.Equal(t, int64(3), post.ID)
	assert.Equal(t, "Docker volumes", post.Title)
	assert.Equal(t, fixedNow, post.CreatedAt)
	assert.Zero(t, post.Upvotes)

	posts, err := svc.Posts(ctx, nil)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, post.ID, posts[0].ID)
	assert.Equal(t, "DevOps", posts[0].DomainName)

	general, err := svc.CreatePost(ctx, "user-1", "General question", "No domain here", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), general.ID)
	assert.Nil(t, general.DomainID)
}

func TestCreatePost_Validates(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	unknown := int64(99)

	_, err := svc.CreatePost(ctx, "user-1", "", "content", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreatePost(ctx, "user-1", "title", "  ", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreatePost(ctx, "", "title", "content", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreatePost(ctx, "user-1", "title", "content", &unknown)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	comment, err := svc.AddComment(ctx, "user-1", 2, "Try Zustand")
	require.NoError(t, err)
	assert.Equal(t, int64(2), comment.ID)
	assert.Equal(t, int64(2), comment.PostID)

	thread, err := svc.Thread(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, thread.Comments, 1)

	_, err = svc.AddComment(ctx, "user-1", 42, "hello?")
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = svc.AddComment(ctx, "user-1", 2, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Jun 10, 2023", FormatDate(time.Date(2023, 6, 10, 9, 15, 0, 0, time.UTC)))
}
