package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/metrics"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "history", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	run := &Run{
		TenantID:   "t1",
		FileTypeID: "42",
		StartedAt:  started,
		Duration:   1500 * time.Millisecond,
		Fields:     12,
		JudgeCalls: 3,
		Metrics: []metrics.Summary{{
			Label:       "v1",
			TotalFields: 12,
			Match:       8,
			Mismatch:    2,
			Coverage:    0.8,
			Accuracy:    0.8,
		}},
	}
	require.NoError(t, s.Save(ctx, run))
	assert.NotEmpty(t, run.ID)

	got, err := s.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "t1", got.TenantID)
	assert.Equal(t, started, got.StartedAt)
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
	assert.Equal(t, int64(3), got.JudgeCalls)
	require.Len(t, got.Metrics, 1)
	assert.Equal(t, 8, got.Metrics[0].Match)
	assert.InDelta(t, 0.8, got.Metrics[0].Accuracy, 1e-9)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.True(t, errors.IsNotFound(err))
}

func TestSaveRequiresTenant(t *testing.T) {
	s := openTestStore(t)
	err := s.Save(context.Background(), &Run{})
	assert.True(t, errors.IsValidationError(err))
}

func TestListFiltersAndOrders(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, r := range []Run{
		{TenantID: "t1", FileTypeID: "42"},
		{TenantID: "t2", FileTypeID: "42"},
		{TenantID: "t1", FileTypeID: "7"},
	} {
		r.StartedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.Save(ctx, &r))
	}

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "7", all[0].FileTypeID)

	t1, err := s.List(ctx, Filter{TenantID: "t1"})
	require.NoError(t, err)
	assert.Len(t, t1, 2)

	ft, err := s.List(ctx, Filter{TenantID: "t1", FileTypeID: "42"})
	require.NoError(t, err)
	require.Len(t, ft, 1)
	assert.Equal(t, base, ft[0].StartedAt)

	limited, err := s.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
