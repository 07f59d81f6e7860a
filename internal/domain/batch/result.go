package batch

// ItemStatus is the outcome of a single bulk item.
type ItemStatus string

// Bulk item status values.
const (
	StatusOK       ItemStatus = "ok"
	StatusConflict ItemStatus = "conflict"
	StatusError    ItemStatus = "error"
)

// Result is the outcome of writing one document in a bulk save.
type Result struct {
	id      string
	version int64
	status  ItemStatus
	err     error
}

// NewOK creates a successful item result with the stored version.
func NewOK(id string, version int64) Result {
	return Result{id: id, version: version, status: StatusOK}
}

// NewConflict creates an item result rejected by external versioning.
func NewConflict(id string, err error) Result {
	return Result{id: id, status: StatusConflict, err: err}
}

// NewError creates a failed item result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the document identifier.
func (r Result) ID() string { return r.id }

// Version returns the stored version (0 unless StatusOK).
func (r Result) Version() int64 { return r.version }

// Status returns the outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Failed counts non-OK results.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.status != StatusOK {
			n++
		}
	}
	return n
}
