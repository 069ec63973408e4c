package engine

// Entity is one stored vector with its caller-assigned id.
//
// Entities are immutable. Successor versions of the same node share them;
// an entity moving to a different cluster is copied.
type Entity struct {
	ID     int64
	Vector []float32
}

func (e Entity) clone() Entity {
	v := make([]float32, len(e.Vector))
	copy(v, e.Vector)
	return Entity{ID: e.ID, Vector: v}
}
