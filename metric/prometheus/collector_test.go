package prometheus

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/campus"
)

func TestCollector(t *testing.T) {
	reg := prom.NewRegistry()
	c, err := NewCollector(reg, "test")
	require.NoError(t, err)

	c.RecordInsert(time.Millisecond, nil)
	c.RecordInsert(time.Millisecond, errors.New("boom"))
	c.RecordSearch(10, time.Millisecond, nil)
	c.RecordBatchInsert(10, 3, time.Second)
	c.RecordConflict(1)
	c.RecordConflict(3)
	c.RecordSplit()
	c.RecordCommit(4, time.Microsecond)
	c.RecordSweep(5, time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(c.ops.WithLabelValues("insert", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.ops.WithLabelValues("insert", "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.ops.WithLabelValues("search", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.ops.WithLabelValues("batch_insert", "partial")), 0)
	assert.InDelta(t, 7, testutil.ToFloat64(c.batchItems.WithLabelValues("success")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(c.batchItems.WithLabelValues("error")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(c.conflicts), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.splits), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(c.swept), 0)

	expected := `
# HELP test_node_splits_total Cluster splits committed
# TYPE test_node_splits_total counter
test_node_splits_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_node_splits_total"))
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	reg := prom.NewRegistry()
	_, err := NewCollector(reg, "")
	require.NoError(t, err)

	_, err = NewCollector(reg, "")
	assert.Error(t, err)

	assert.Panics(t, func() { MustNewCollector(reg, "") })
}

func TestCollector_WithIndex(t *testing.T) {
	reg := prom.NewRegistry()
	c := MustNewCollector(reg, "campus")

	idx, err := campus.NewBuilder(2).PostingLimit(2).Metrics(c).Build()
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()
	require.NoError(t, idx.Insert(ctx, []float32{0, 0}, 0))
	require.NoError(t, idx.Insert(ctx, []float32{0, 0}, 1))
	require.NoError(t, idx.Insert(ctx, []float32{10, 10}, 2))

	assert.InDelta(t, 3, testutil.ToFloat64(c.ops.WithLabelValues("insert", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.splits), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(c.commitHeld))
}
