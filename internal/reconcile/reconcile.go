// Package reconcile implements full-list replacement of a parent's child
// records. Each submitted item is routed to update-existing or insert-new;
// an update whose target no longer exists falls back to insert so that
// resubmitting a stale id creates a fresh record instead of failing.
package reconcile

import "context"

// Status classifies the outcome of a single item.
type Status string

const (
	StatusCreated Status = "created"
	StatusUpdated Status = "updated"
	StatusFailed  Status = "failed"
)

// Result reports the outcome for one submitted item. Record is set for
// created/updated items, Err for failed ones.
type Result[R any] struct {
	Status Status `json:"status"`
	Record R      `json:"record,omitempty"`
	Err    error  `json:"-"`
}

// Ops binds one replacement run to a parent-scoped store. Update must
// report found=false when no row matched the id under the parent, and
// Insert must stamp the parent's organization (and sub-scope) onto the
// item regardless of what the item itself carries.
type Ops[T, R any] struct {
	ExistingID func(item T) int64
	Validate   func(item T) error
	Update     func(ctx context.Context, id int64, item T) (R, bool, error)
	Insert     func(ctx context.Context, item T) (R, error)
}

// Replace processes items in input order, one at a time. A failure on one
// item is recorded in its slot and does not abort the rest of the batch;
// records persisted before a failure stay persisted.
func Replace[T, R any](ctx context.Context, items []T, ops Ops[T, R]) []Result[R] {
	results := make([]Result[R], len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			results[i] = Result[R]{Status: StatusFailed, Err: err}
			continue
		}
		results[i] = replaceOne(ctx, item, ops)
	}
	return results
}

func replaceOne[T, R any](ctx context.Context, item T, ops Ops[T, R]) Result[R] {
	if ops.Validate != nil {
		if err := ops.Validate(item); err != nil {
			return Result[R]{Status: StatusFailed, Err: err}
		}
	}

	if id := ops.ExistingID(item); id > 0 {
		record, found, err := ops.Update(ctx, id, item)
		if err != nil {
			return Result[R]{Status: StatusFailed, Err: err}
		}
		if found {
			return Result[R]{Status: StatusUpdated, Record: record}
		}
		// Stale id: the target vanished under this parent, create anew.
	}

	record, err := ops.Insert(ctx, item)
	if err != nil {
		return Result[R]{Status: StatusFailed, Err: err}
	}
	return Result[R]{Status: StatusCreated, Record: record}
}

// Counts summarises a result list for batch responses.
func Counts[R any](results []Result[R]) (created, updated, failed int) {
	for _, res := range results {
		switch res.Status {
		case StatusCreated:
			created++
		case StatusUpdated:
			updated++
		case StatusFailed:
			failed++
		}
	}
	return created, updated, failed
}
