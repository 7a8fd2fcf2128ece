package recordstore

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	repo, _ := newTestRepository(t, WithMetrics(m))
	ctx := tenantCtx(uuid.New())

	id := insertCar(t, ctx, repo, car{Make: "Toyota"})
	err = repo.Insert(ctx, InsertRequest{ID: id, Type: "car", Data: car{}})
	require.ErrorIs(t, err, ErrDuplicateKey)

	_, err = repo.GetByID(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(opInsert, outcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(opInsert, outcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues(opGet, outcomeOK)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestNewMetrics_RegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := NewMetrics(reg)
	require.NoError(t, err)
	second, err := NewMetrics(reg)
	require.NoError(t, err)

	assert.Same(t, first.operations, second.operations)
	assert.Same(t, first.duration, second.duration)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.observe(opGet, time.Now(), nil) })
}
