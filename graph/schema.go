package graph

// StateSchema defines the structure and update logic for the graph state.
//
// Nodes return updates rather than whole states; the schema decides how an
// update is folded into the current state. A schema may reject an update, which
// aborts the run.
type StateSchema[S any] interface {
	// Init returns the initial state.
	Init() S

	// Update merges the new state into the current state.
	Update(current, new S) (S, error)
}

// SchemaFuncs adapts a pair of functions to StateSchema.
type SchemaFuncs[S any] struct {
	InitFunc   func() S
	UpdateFunc func(current, new S) (S, error)
}

// Init returns the initial state, or the zero value when InitFunc is nil.
func (s SchemaFuncs[S]) Init() S {
	if s.InitFunc == nil {
		var zero S
		return zero
	}
	return s.InitFunc()
}

// Update merges new into current using UpdateFunc. Without UpdateFunc the new
// state replaces the current one.
func (s SchemaFuncs[S]) Update(current, new S) (S, error) {
	if s.UpdateFunc == nil {
		return new, nil
	}
	return s.UpdateFunc(current, new)
}
