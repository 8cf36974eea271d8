package trialseq

import "context"

// Importer loads a named condition resource into a [Table]. The real
// system backs this with file parsing and a resource cache; the engine
// only depends on this contract. The import happens once, at handler
// construction, and a failure there fails construction — the engine
// never retries or overlaps imports.
//
// The selection restricts which rows of the resource are returned; an
// all-rows selection (the zero value) returns everything. See
// [Selection] for the supported forms.
type Importer interface {
	ImportConditions(
		ctx context.Context,
		name string,
		selection Selection,
	) (*Table, error)
}

// ImporterFunc adapts a function to the [Importer] interface.
type ImporterFunc func(
	ctx context.Context,
	name string,
	selection Selection,
) (*Table, error)

// ImportConditions calls f.
func (f ImporterFunc) ImportConditions(
	ctx context.Context,
	name string,
	selection Selection,
) (*Table, error) {
	return f(ctx, name, selection)
}
