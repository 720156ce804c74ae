package assistant

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DispatchResult maps a use case's description to its fetcher's raw payload.
// The payload schema is owned by each fetcher and opaque to the dispatcher;
// fetchers encode their own degradations as in-band error payloads.
type DispatchResult map[string]any

// Dispatcher invokes each selected use case's fetcher with positionally
// bound arguments and collects the payloads.
type Dispatcher struct {
	catalog *Catalog
}

// NewDispatcher creates a dispatcher over the given catalog.
func NewDispatcher(catalog *Catalog) *Dispatcher {
	return &Dispatcher{catalog: catalog}
}

// Dispatch resolves every id, verifies the field map covers each use case's
// required fields, and invokes the fetchers. Fetchers run concurrently:
// they are mutually independent and write to disjoint result keys. The
// first fetcher error (or precondition violation) aborts the whole
// dispatch; there is no partial-result policy at this layer.
//
// Ids are not deduplicated. Callers pass a use-case-unique list; a
// duplicate would simply overwrite the same description key.
func (d *Dispatcher) Dispatch(ctx context.Context, ids []UseCaseID, fields FieldMap) (DispatchResult, error) {
	type binding struct {
		uc   UseCase
		fn   Fetcher
		args [][]string
	}

	bindings := make([]binding, 0, len(ids))
	for _, id := range ids {
		uc, err := d.catalog.ByID(id)
		if err != nil {
			return nil, err
		}

		var missing []FieldName
		for _, name := range uc.RequiredFields {
			if _, ok := fields[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return nil, &MissingFieldError{UseCase: uc.Description, Fields: missing}
		}

		fn, ok := d.catalog.fetcherFor(id)
		if !ok {
			return nil, &NotFoundError{ID: id}
		}

		args := make([][]string, len(uc.RequiredFields))
		for i, name := range uc.RequiredFields {
			args[i] = fields.Args(name)
		}
		bindings = append(bindings, binding{uc: uc, fn: fn, args: args})
	}

	results := make(DispatchResult, len(bindings))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, b := range bindings {
		g.Go(func() error {
			payload, err := b.fn(gctx, b.args...)
			if err != nil {
				slog.Error("dispatch: fetcher failed", "use_case", b.uc.Description, "error", err)
				return err
			}
			mu.Lock()
			results[b.uc.Description] = payload
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
