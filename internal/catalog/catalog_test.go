package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/example/skillbuilder/internal/database"
	"github.com/example/skillbuilder/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *Service {
	return NewService(database.NewMemoryStore(database.DefaultSeed()))
}

func TestModules_JoinsProgress(t *testing.T) {
	modules, err := newService().Modules(context.Background(), "user-1", 1, 1)
	require.NoError(t, err)
	require.Len(t, modules, 3)

	assert.Equal(t, "HTML Fundamentals", modules[0].Title)
	assert.Equal(t, StatusCompleted, modules[0].Status())
	assert.Equal(t, StatusCompleted, modules[1].Status())
	assert.Equal(t, StatusInProgress, modules[2].Status())
}

func TestModules_OtherUserHasNoProgress(t *testing.T) {
	modules, err := newService().Modules(context.Background(), "user-2", 1, 1)
	require.NoError(t, err)
	for _, m := range modules {
		assert.Nil(t, m.Progress)
		assert.Equal(t, StatusNotStarted, m.Status())
	}
}

func TestModules_UnknownDomainOrLevel(t *testing.T) {
	svc := newService()

	_, err := svc.Modules(context.Background(), "user-1", 99, 1)
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = svc.Modules(context.Background(), "user-1", 1, 9)
	assert.ErrorIs(t, err, database.ErrNotFound)

	modules, err := svc.Modules(context.Background(), "user-1", 4, 3)
	require.NoError(t, err)
	assert.Empty(t, modules)
}

func TestAddDomain(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	domain, err := svc.AddDomain(ctx, "  Security ", "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), domain.ID)
	assert.Equal(t, "Security", domain.Name)
	assert.Nil(t, domain.Description)

	domains, err := svc.Domains(ctx)
	require.NoError(t, err)
	assert.Len(t, domains, 5)

	_, err = svc.AddDomain(ctx, "   ", "desc")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLookupsByName(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	domain, err := svc.DomainByName(ctx, "data science")
	require.NoError(t, err)
	assert.Equal(t, int64(3), domain.ID)

	level, err := svc.LevelByName(ctx, " ADVANCED")
	require.NoError(t, err)
	assert.Equal(t, int64(3), level.ID)

	_, err = svc.DomainByName(ctx, "Gardening")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestAddModule_Validates(t *testing.T) {
	ctx := context.Background()
	svc := newService()

	err := svc.AddModule(ctx, &models.Module{DomainID: 99, MasteryLevelID: 1, Title: "Nope"})
	assert.ErrorIs(t, err, database.ErrNotFound)

	err = svc.AddModule(ctx, &models.Module{DomainID: 1, MasteryLevelID: 1, Title: " "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	module := &models.Module{DomainID: 2, MasteryLevelID: 2, Title: "Flutter Widgets", OrderIndex: 1}
	require.NoError(t, svc.AddModule(ctx, module))
	assert.Equal(t, int64(9), module.ID)

	got, err := svc.Module(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "Flutter Widgets", got.Title)
}

func TestModules_StatusFollowsUpdates(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore(database.DefaultSeed())
	svc := NewService(store)

	_, err := store.UpdateProgress(ctx, "user-1", 4, false, time.Now())
	require.NoError(t, err)

	modules, err := svc.Modules(ctx, "user-1", 1, 2)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, StatusInProgress, modules[0].Status())
}
