package progress

import (
	"context"
	"testing"
	"time"

	"github.com/example/skillbuilder/internal/database"
	"github.com/example/skillbuilder/pkg/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newSeededService() *Service {
	return NewService(database.NewMemoryStore(database.DefaultSeed()))
}

func TestStats_SeedUser(t *testing.T) {
	stats, err := newSeededService().Stats(context.Background(), "user-1")
	require.NoError(t, err)

	want := models.ProgressStats{
		TotalModules:         8,
		CompletedModules:     3,
		InProgressModules:    2,
		NotStartedModules:    3,
		CompletionPercentage: 38,
		HasData:              true,
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("Stats mismatch (-want +got):\n%s", diff)
	}
}

func TestStats_UserWithoutRecords(t *testing.T) {
	stats, err := newSeededService().Stats(context.Background(), "user-2")
	require.NoError(t, err)

	assert.Equal(t, 8, stats.TotalModules)
	assert.Equal(t, 0, stats.CompletedModules)
	assert.Equal(t, 8, stats.NotStartedModules)
	assert.Equal(t, 0, stats.CompletionPercentage)
	assert.True(t, stats.HasData)
}

func TestStats_EmptyCatalog(t *testing.T) {
	svc := NewService(database.NewMemoryStore(database.Seed{}))

	stats, err := svc.Stats(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, stats.HasData)
	assert.Equal(t, 0, stats.CompletionPercentage)
	assert.Equal(t, 0, stats.TotalModules)
}

func TestStats_RecordsBeyondCatalogAreNotClamped(t *testing.T) {
	seed := database.Seed{
		Modules: []models.Module{{ID: 1, DomainID: 1, MasteryLevelID: 1, Title: "Only"}},
		Progress: []models.UserProgress{
			{ID: 1, UserID: "user-1", ModuleID: 1, IsCompleted: true},
			{ID: 2, UserID: "user-1", ModuleID: 2, IsCompleted: true},
			{ID: 3, UserID: "user-1", ModuleID: 3},
		},
	}
	svc := NewService(database.NewMemoryStore(seed))

	stats, err := svc.Stats(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, -2, stats.NotStartedModules)
	assert.Equal(t, 200, stats.CompletionPercentage)
}

func TestCompletedByDomain(t *testing.T) {
	got, err := newSeededService().CompletedByDomain(context.Background(), "user-1")
	require.NoError(t, err)

	want := map[int64]models.DomainCompletion{
		1: {Completed: 2, Total: 4},
		2: {Completed: 0, Total: 1},
		3: {Completed: 1, Total: 2},
		4: {Completed: 0, Total: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CompletedByDomain mismatch (-want +got):\n%s", diff)
	}
}

func TestBreakdown(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService()

	_, err := svc.store.AddDomain(ctx, "Security", nil)
	require.NoError(t, err)

	got, err := svc.Breakdown(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 5)

	assert.Equal(t, models.DomainProgress{DomainID: 1, Name: "Web Development", Completed: 2, Total: 4, Percentage: 50}, got[0])
	assert.Equal(t, 50, got[2].Percentage)
	assert.Equal(t, models.DomainProgress{DomainID: 5, Name: "Security"}, got[4])
}

func TestUpdate_IsIdempotentPerPair(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newSeededService().WithClock(func() time.Time { return clock })

	first, err := svc.Update(ctx, "user-2", 8, true)
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)
	assert.Equal(t, clock, *first.CompletedAt)

	clock = clock.Add(time.Minute)
	second, err := svc.Update(ctx, "user-2", 8, true)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.CompletedAt)
	assert.Equal(t, clock, *second.CompletedAt)

	records, err := svc.store.ProgressByUser(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, records, 1)

	stats, err := svc.Stats(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CompletedModules)
	assert.Equal(t, 13, stats.CompletionPercentage)
}

func TestUpdate_ExistingRecordKeepsID(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService()

	updated, err := svc.Update(ctx, "user-1", 3, true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated.ID)
	assert.True(t, updated.IsCompleted)

	reset, err := svc.Update(ctx, "user-1", 1, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reset.ID)
	assert.Nil(t, reset.CompletedAt)

	stats, err := svc.Stats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.CompletedModules)
	assert.Equal(t, 2, stats.InProgressModules)
}

func TestUpdate_Rejects(t *testing.T) {
	ctx := context.Background()
	svc := newSeededService()

	_, err := svc.Update(ctx, "user-1", 99, true)
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = svc.Update(ctx, " ", 1, true)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 38, Percentage(3, 8))
	assert.Equal(t, 13, Percentage(1, 8))
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 0, Percentage(5, 0))
	assert.Equal(t, 100, Percentage(4, 4))
}
