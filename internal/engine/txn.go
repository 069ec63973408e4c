package engine

import (
	"time"
)

// insertTx is the private working set of one insert attempt.
//
// Every version the transaction depends on is recorded in reads the first
// time it is looked at. Changes go to staged successor versions; nothing is
// visible to other goroutines until commit.
type insertTx struct {
	idx *Index

	reads  map[*Node]*Version
	staged map[*Node]*Version
	order  []*Node // staging order, pre-existing and created nodes alike

	created  []*Node
	children map[*Node][2]*Node // nodes split in this transaction
	splitLog []NodeID

	jobs []splitJob
}

// splitJob asks for extra to be placed into node, splitting it if full.
type splitJob struct {
	node  *Node
	extra Entity
}

func newInsertTx(idx *Index) *insertTx {
	return &insertTx{
		idx:      idx,
		reads:    make(map[*Node]*Version),
		staged:   make(map[*Node]*Version),
		children: make(map[*Node][2]*Node),
	}
}

// Insert adds vector under id. It retries until the insert commits and never
// fails; the caller is responsible for the dimension check. The vector is
// copied at the configured precision.
func (idx *Index) Insert(id int64, vector []float32) {
	e := Entity{ID: id, Vector: idx.width.Quantize(vector)}

	for attempt := 1; ; attempt++ {
		if idx.nodes.Len() == 0 {
			if idx.bootstrap(e) {
				idx.inserts.Add(1)
				return
			}
			continue
		}

		tx := newInsertTx(idx)
		if !tx.run(e) {
			continue
		}
		if idx.commit(tx) {
			idx.inserts.Add(1)
			return
		}

		idx.conflicts.Add(1)
		idx.observer.OnConflict(attempt)
		idx.logger.Debug("insert conflict, retrying",
			"id", id,
			"attempt", attempt,
			"reads", len(tx.reads),
			"staged", len(tx.staged))
	}
}

// run stages all changes for inserting e. It reports false when the snapshot
// held no live node to route to.
func (tx *insertTx) run(e Entity) bool {
	n, v := tx.idx.nearestLive(e.Vector)
	if n == nil {
		return false
	}
	tx.reads[n] = v

	tx.addEntity(n, e)
	for len(tx.jobs) > 0 {
		job := tx.jobs[0]
		tx.jobs = tx.jobs[1:]
		tx.split(job.node, job.extra)
	}
	return true
}

// view returns the transaction's current view of n, recording a read on first access.
func (tx *insertTx) view(n *Node) *Version {
	if v, ok := tx.staged[n]; ok {
		return v
	}
	if v, ok := tx.reads[n]; ok {
		return v
	}
	v := n.Latest()
	tx.reads[n] = v
	return v
}

// mutable returns the staged successor of n, creating it on first write.
func (tx *insertTx) mutable(n *Node) *Version {
	if v, ok := tx.staged[n]; ok {
		return v
	}
	v := tx.view(n).successor()
	tx.staged[n] = v
	tx.order = append(tx.order, n)
	return v
}

// createNode stages a fresh, empty child of parent.
func (tx *insertTx) createNode(parent *Node) *Node {
	n := newNode(tx.idx.nextNodeID(), parent)
	tx.staged[n] = newVersion(n, tx.idx.dim)
	tx.order = append(tx.order, n)
	tx.created = append(tx.created, n)
	return n
}

func (tx *insertTx) isCreated(n *Node) bool {
	_, read := tx.reads[n]
	return !read
}

func (tx *insertTx) isSplit(n *Node) bool {
	_, ok := tx.children[n]
	return ok
}

// resolve follows splits made in this transaction down to the live node
// nearest to vec.
func (tx *insertTx) resolve(n *Node, vec []float32) *Node {
	for {
		kids, ok := tx.children[n]
		if !ok {
			return n
		}
		d0 := tx.idx.dist(vec, tx.view(kids[0]).centroid)
		d1 := tx.idx.dist(vec, tx.view(kids[1]).centroid)
		if d1 < d0 {
			n = kids[1]
		} else {
			n = kids[0]
		}
	}
}

// addEntity places e into n, or queues a split when n is full.
func (tx *insertTx) addEntity(n *Node, e Entity) {
	n = tx.resolve(n, e.Vector)
	v := tx.mutable(n)
	if len(v.posting) < tx.idx.postingLimit {
		v.appendEntity(e)
		return
	}
	tx.jobs = append(tx.jobs, splitJob{node: n, extra: e})
}

// validate reports whether every read version is still current. Callers hold
// the commit lock.
func (tx *insertTx) validate() bool {
	for n, v := range tx.reads {
		if n.Latest() != v || n.Archived() {
			return false
		}
	}
	return true
}

// commit validates tx and publishes it. It reports false on conflict, in
// which case nothing was published.
func (idx *Index) commit(tx *insertTx) bool {
	idx.commitMu.Lock()
	start := time.Now()

	if !tx.validate() {
		idx.commitMu.Unlock()
		return false
	}

	if err := tx.checkStaged(); err != nil {
		idx.commitMu.Unlock()
		panic(err)
	}

	stamp := idx.commitCounter.Add(1)

	// Created nodes get their first version before any published edge can
	// lead a lock-free reader to them.
	published := 0
	for _, created := range []bool{true, false} {
		for _, n := range tx.order {
			if tx.isSplit(n) || tx.isCreated(n) != created {
				continue
			}
			v := tx.staged[n]
			v.commit = stamp
			n.latest.Store(v)
			published++
		}
	}

	var added []*Node
	for _, n := range tx.created {
		if !tx.isSplit(n) {
			added = append(added, n)
		}
	}
	idx.nodes.publish(added, nil)

	archived := 0
	for n := range tx.children {
		n.archived.Store(true)
		if n.latest.Load() != nil {
			archived++
		}
	}
	idx.liveNodes.Add(int64(len(added) - archived))

	for i := len(tx.order) - 1; i >= 0; i-- {
		if n := tx.order[i]; !tx.isSplit(n) {
			idx.entry.Store(n)
			break
		}
	}

	held := time.Since(start)
	idx.commitMu.Unlock()

	idx.splits.Add(int64(len(tx.splitLog)))
	for _, id := range tx.splitLog {
		idx.observer.OnSplit(id)
	}
	idx.observer.OnCommit(published, held)

	return true
}

// checkStaged verifies the structural invariants of every version about to
// be published. The read set has been validated, so a failure here is a
// defect in split or rewiring logic.
func (tx *insertTx) checkStaged() error {
	final := func(n *Node) *Version {
		if v, ok := tx.staged[n]; ok {
			return v
		}
		return n.Latest()
	}
	gone := func(n *Node) bool {
		return tx.isSplit(n) || n.Archived()
	}

	for _, n := range tx.order {
		if tx.isSplit(n) {
			continue
		}
		v := tx.staged[n]
		if len(v.posting) == 0 || len(v.posting) > tx.idx.postingLimit {
			return structuralf("node %d stages %d entities (limit %d)", n.id, len(v.posting), tx.idx.postingLimit)
		}
		if len(v.out) > tx.idx.connectionLimit || len(v.in) > tx.idx.connectionLimit {
			return structuralf("node %d stages degree out=%d in=%d (limit %d)", n.id, len(v.out), len(v.in), tx.idx.connectionLimit)
		}
		for _, x := range v.out {
			if gone(x) {
				return structuralf("node %d links to archived node %d", n.id, x.id)
			}
			if !final(x).hasIn(n) {
				return structuralf("edge %d->%d missing reverse entry", n.id, x.id)
			}
		}
		for _, y := range v.in {
			if gone(y) {
				return structuralf("archived node %d links to node %d", y.id, n.id)
			}
			if !final(y).hasOut(n) {
				return structuralf("edge %d->%d missing forward entry", y.id, n.id)
			}
		}
	}
	return nil
}
