package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liyu1981.xyz/vessel-resource-service/pkg/common"
	"liyu1981.xyz/vessel-resource-service/pkg/db"
	"liyu1981.xyz/vessel-resource-service/pkg/models"
	_ "liyu1981.xyz/vessel-resource-service/pkg/testing"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	common.SetTestLoggerNop()

	d, err := db.Open(db.UseNamedMemorySqliteDialector(uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	return NewGormStore(d)
}

func seedFuel(t *testing.T, s *GormStore) {
	t.Helper()
	err := s.EnsureResources(context.Background(), []models.Resource{{
		Type:            models.ResourceFuel,
		Level:           50,
		Capacity:        1000,
		Unit:            "L",
		ConsumptionRate: models.ConsumptionRate{Value: 50, Unit: "L/h"},
		LastUpdated:     t0,
	}})
	require.NoError(t, err)
}

func TestEnsureResourcesKeepsExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedFuel(t, s)

	r, err := s.FindResource(ctx, models.ResourceFuel)
	require.NoError(t, err)
	r.Level = 12
	require.NoError(t, s.SaveResource(ctx, r))

	seedFuel(t, s)

	r, err = s.FindResource(ctx, models.ResourceFuel)
	require.NoError(t, err)
	assert.Equal(t, 12.0, r.Level)

	_, err = s.FindResource(ctx, models.ResourceOil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveResourceAppendsPendingRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedFuel(t, s)

	r, err := s.FindResource(ctx, models.ResourceFuel)
	require.NoError(t, err)
	assert.Empty(t, r.History)

	r.Level = 40
	r.History = append(r.History, models.HistoryEntry{
		Level: 40, Action: models.ActionConsumption, Amount: 100, Timestamp: t0, Actor: "crew-1",
	})
	r.Deliveries = append(r.Deliveries, models.Delivery{
		Amount: 300, Document: "BDN-1", Timestamp: t0, Actor: "bosun",
	})
	require.NoError(t, s.SaveResource(ctx, r))
	assert.NotZero(t, r.History[0].ID)
	assert.NotZero(t, r.Deliveries[0].ID)

	// saving again must not duplicate already persisted rows
	require.NoError(t, s.SaveResource(ctx, r))

	page, err := s.ListHistory(ctx, models.ResourceFuel, HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, models.ResourceFuel, page.Entries[0].ResourceType)
	assert.Equal(t, "crew-1", page.Entries[0].Actor)

	deliveries, err := s.ListDeliveries(ctx, models.ResourceFuel, HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, deliveries.Deliveries, 1)
	assert.Equal(t, "BDN-1", deliveries.Deliveries[0].Document)

	stored, err := s.FindResource(ctx, models.ResourceFuel)
	require.NoError(t, err)
	assert.Equal(t, 40.0, stored.Level)
}

func TestListHistoryFiltersAndPages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedFuel(t, s)

	r, err := s.FindResource(ctx, models.ResourceFuel)
	require.NoError(t, err)
	for i := range 10 {
		r.History = append(r.History, models.HistoryEntry{
			Level:     float64(50 - i),
			Action:    models.ActionConsumption,
			Amount:    10,
			Timestamp: t0.Add(time.Duration(i) * time.Hour),
			Actor:     common.SystemActor,
		})
	}
	require.NoError(t, s.SaveResource(ctx, r))

	page, err := s.ListHistory(ctx, models.ResourceFuel, HistoryFilter{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(10), page.Total)
	require.Len(t, page.Entries, 3)
	assert.Equal(t, 47.0, page.Entries[0].Level)
	assert.Equal(t, 45.0, page.Entries[2].Level)

	start := t0.Add(2 * time.Hour)
	end := t0.Add(4 * time.Hour)
	page, err = s.ListHistory(ctx, models.ResourceFuel, HistoryFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	for i := 1; i < len(page.Entries); i++ {
		assert.Greater(t, page.Entries[i].ID, page.Entries[i-1].ID)
	}
}

func TestHistoryFilterNormalize(t *testing.T) {
	f := HistoryFilter{Page: -1, Limit: 100000}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, MaxPageLimit, f.Limit)

	f = HistoryFilter{}.Normalize()
	assert.Equal(t, DefaultPageLimit, f.Limit)
}

func TestEngineState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	state, err := s.GetEngineState(ctx)
	require.NoError(t, err)
	assert.False(t, state.Running)

	require.NoError(t, s.SaveEngineState(ctx, models.EngineState{Running: true, ChangedAt: t0, ChangedBy: "chief"}))
	require.NoError(t, s.SaveEngineState(ctx, models.EngineState{Running: false, ChangedAt: t0, ChangedBy: common.SystemActor, StopReason: "depleted"}))

	state, err = s.GetEngineState(ctx)
	require.NoError(t, err)
	assert.False(t, state.Running)
	assert.Equal(t, "depleted", state.StopReason)
}
