package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/campus/distance"
	"github.com/hupe1980/campus/internal/kmeans"
	"github.com/hupe1980/campus/internal/pool"
	"github.com/hupe1980/campus/internal/precision"
)

// Observer receives engine events. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	// OnConflict is called when validation fails; attempt counts from 1.
	OnConflict(attempt int)
	// OnSplit is called once per split committed.
	OnSplit(node NodeID)
	// OnCommit is called after each successful commit with the number of
	// published versions and the time the commit lock was held.
	OnCommit(staged int, held time.Duration)
}

type noopObserver struct{}

func (noopObserver) OnConflict(int)              {}
func (noopObserver) OnSplit(NodeID)              {}
func (noopObserver) OnCommit(int, time.Duration) {}

// Config holds the construction parameters of an Index.
type Config struct {
	Dimension       int
	PostingLimit    int
	ConnectionLimit int
	Distance        distance.Func

	// Width is the stored element precision. Zero means float32.
	Width precision.Width

	// MaxReclusterRounds bounds the 2-means refinement of a split.
	// Zero selects kmeans.DefaultMaxRounds.
	MaxReclusterRounds int

	Logger   *slog.Logger
	Observer Observer
}

func (c *Config) validate() error {
	if c.Dimension <= 0 {
		return fmt.Errorf("dimension must be positive, got %d", c.Dimension)
	}
	if c.PostingLimit < 1 {
		return fmt.Errorf("posting limit must be at least 1, got %d", c.PostingLimit)
	}
	if c.ConnectionLimit < 1 {
		return fmt.Errorf("connection limit must be at least 1, got %d", c.ConnectionLimit)
	}
	if c.Distance == nil {
		return errors.New("distance function is required")
	}
	return nil
}

// Index is the clustered-graph index core. All methods are safe for
// concurrent use.
type Index struct {
	dim             int
	postingLimit    int
	connectionLimit int
	dist            distance.Func
	width           precision.Width
	maxRounds       int
	logger          *slog.Logger
	observer        Observer

	// commitMu serializes validation, commit, bootstrap and sweep.
	commitMu sync.Mutex

	nodes *registry
	entry atomic.Pointer[Node]

	searchPool *pool.Pool[*Version]

	nodeCounter   atomic.Uint32
	commitCounter atomic.Uint64

	liveNodes atomic.Int64
	conflicts atomic.Int64
	splits    atomic.Int64
	inserts   atomic.Int64
}

// New creates an empty index.
func New(cfg Config) (*Index, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	width := cfg.Width
	if width == 0 {
		width = precision.Float32
	}
	if _, err := precision.Parse(int(width)); err != nil {
		return nil, err
	}

	maxRounds := cfg.MaxReclusterRounds
	if maxRounds <= 0 {
		maxRounds = kmeans.DefaultMaxRounds
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	observer := cfg.Observer
	if observer == nil {
		observer = noopObserver{}
	}

	return &Index{
		dim:             cfg.Dimension,
		postingLimit:    cfg.PostingLimit,
		connectionLimit: cfg.ConnectionLimit,
		dist:            cfg.Distance,
		width:           width,
		maxRounds:       maxRounds,
		logger:          logger,
		observer:        observer,
		nodes:           newRegistry(),
		searchPool:      pool.New[*Version](),
	}, nil
}

// Dimension returns the configured vector dimension.
func (idx *Index) Dimension() int { return idx.dim }

// PostingLimit returns the maximum number of entities per cluster.
func (idx *Index) PostingLimit() int { return idx.postingLimit }

// ConnectionLimit returns the maximum in- and out-degree per cluster.
func (idx *Index) ConnectionLimit() int { return idx.connectionLimit }

// Entry returns the current search entry point, nil while empty.
func (idx *Index) Entry() *Node { return idx.entry.Load() }

// NodeCount returns the number of live, unarchived nodes.
func (idx *Index) NodeCount() int { return int(idx.liveNodes.Load()) }

func (idx *Index) nextNodeID() NodeID {
	return NodeID(idx.nodeCounter.Add(1) - 1)
}

// bootstrap creates the first node holding e. It reports false when another
// writer populated the index first.
func (idx *Index) bootstrap(e Entity) bool {
	idx.commitMu.Lock()
	defer idx.commitMu.Unlock()

	if idx.nodes.Len() > 0 {
		return false
	}

	n := newNode(idx.nextNodeID(), nil)
	v := newVersion(n, idx.dim)
	v.appendEntity(e)
	v.commit = idx.commitCounter.Add(1)
	n.latest.Store(v)

	idx.nodes.publish([]*Node{n}, nil)
	idx.liveNodes.Add(1)
	idx.entry.Store(n)

	idx.logger.Debug("bootstrapped index", "node", n.id)
	return true
}

// nearestLive returns the nearest unarchived node by exact scan of a
// registry snapshot, or nil when there is none.
func (idx *Index) nearestLive(vec []float32) (*Node, *Version) {
	versions := idx.liveVersions()
	if len(versions) == 0 {
		return nil, nil
	}
	centroids := make([][]float32, len(versions))
	for i, v := range versions {
		centroids[i] = v.centroid
	}

	// Non-finite distances leave Nearest without a winner; any live node
	// is then as good as another.
	i, _ := kmeans.Nearest(vec, centroids, idx.dist)
	if i < 0 {
		i = 0
	}
	return versions[i].node, versions[i]
}
