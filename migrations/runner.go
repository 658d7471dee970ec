package migrations

import (
	"slices"

	"go.vocdoni.io/dvote/log"
)

// Runner runs the applying migrations of a Bond. Like the bond, a runner is
// created for one request and discarded with it.
type Runner struct {
	bond *Bond
}

// NewRunner creates a runner for the given bond.
func NewRunner(bond *Bond) *Runner {
	return &Runner{bond: bond}
}

// Bond returns the bond of the runner.
func (r *Runner) Bond() *Bond {
	return r.bond
}

// RunUpwards runs the applying migrations on the request, oldest first. Each
// migration receives the request produced by the previous one. The run starts
// from a copy, so the bond request stays the original client request. An
// error aborts the run; nothing already applied is undone.
func (r *Runner) RunUpwards() (*Request, error) {
	result := r.bond.Request().Clone()
	for _, m := range r.bond.ApplyingMigrations() {
		log.Debugw("applying migration", "migration", m.Name, "direction", Upwards,
			"userVersion", r.bond.UserVersion())
		next, err := m.up(result)
		if err != nil {
			failuresTotal.WithLabelValues(m.Name, string(Upwards)).Inc()
			return nil, err
		}
		appliedTotal.WithLabelValues(m.Name, string(Upwards)).Inc()
		result = next
	}
	return result, nil
}

// RunDownwards runs the applying migrations on the response, newest first,
// undoing the changes of each version until the response has the shape the
// client expects. Every migration receives the original client request.
func (r *Runner) RunDownwards(response *Response) (*Response, error) {
	if response == nil {
		return nil, ErrMissingResponse
	}
	result := response
	for _, m := range slices.Backward(r.bond.ApplyingMigrations()) {
		log.Debugw("applying migration", "migration", m.Name, "direction", Downwards,
			"userVersion", r.bond.UserVersion())
		next, err := m.down(r.bond.Request(), result)
		if err != nil {
			failuresTotal.WithLabelValues(m.Name, string(Downwards)).Inc()
			return nil, err
		}
		appliedTotal.WithLabelValues(m.Name, string(Downwards)).Inc()
		result = next
	}
	return result, nil
}
