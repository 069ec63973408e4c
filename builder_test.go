package campus_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/campus"
)

func TestBuilder_Basic(t *testing.T) {
	idx, err := campus.NewBuilder(4).
		SquaredL2().
		Build()
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Insert(context.Background(), []float32{1, 2, 3, 4}, 7))
	assert.Equal(t, 1, idx.VectorCount())
}

func TestBuilder_FullOptions(t *testing.T) {
	mc := &campus.BasicMetricsCollector{}

	idx, err := campus.NewBuilder(4).
		Angular().
		PostingLimit(10).
		ConnectionLimit(3).
		Half().
		SearchDefaults(4, 16).
		Logger(campus.NoopLogger()).
		Metrics(mc).
		SweepEvery(time.Hour).
		InsertConcurrency(2).
		InsertRateLimit(1e6, 100).
		Build()
	require.NoError(t, err)
	defer idx.Close()

	cfg := idx.Config()
	assert.Equal(t, "angular", cfg.Metric)
	assert.Equal(t, 10, cfg.PostingLimit)
	assert.Equal(t, 3, cfg.ConnectionLimit)
	assert.Equal(t, 2, cfg.ElementSize)
	assert.Equal(t, 4, cfg.DefaultNodeNum)
	assert.Equal(t, 16, cfg.DefaultEF)

	require.NoError(t, idx.Insert(context.Background(), []float32{1, 0, 0, 0}, 1))
	assert.Equal(t, int64(1), mc.GetStats().InsertCount)
}

func TestBuilder_Immutable(t *testing.T) {
	base := campus.NewBuilder(8).PostingLimit(20)

	small := base.PostingLimit(5)
	angular := base.Angular()

	assert.Equal(t, 20, base.Config().PostingLimit)
	assert.Equal(t, 5, small.Config().PostingLimit)
	assert.Equal(t, "l2", small.Config().Metric)
	assert.Equal(t, "angular", angular.Config().Metric)
	assert.Equal(t, 20, angular.Config().PostingLimit)
}

func TestBuilder_InvalidConfig(t *testing.T) {
	_, err := campus.NewBuilder(0).Build()
	assert.ErrorIs(t, err, campus.ErrInvalidConfig)

	assert.Panics(t, func() {
		campus.NewBuilder(4).ConnectionLimit(0).MustBuild()
	})
}

func TestBuilder_FromConfig(t *testing.T) {
	cfg := campus.DefaultConfig(3)
	cfg.PostingLimit = 2

	idx := campus.FromConfig(cfg).MustBuild()
	defer idx.Close()

	assert.Equal(t, cfg, idx.Config())
}
