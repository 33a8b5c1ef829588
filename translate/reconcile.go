package translate

import "errors"

// Change records one replaced text.
type Change struct {
	ID     string `yaml:"id"`
	Before string `yaml:"before"`
	After  string `yaml:"after"`
}

// Outcome is what Reconcile did with a completion.
type Outcome int

const (
	// OutcomeFailed: the unit failed and its node was left untouched.
	OutcomeFailed Outcome = iota
	// OutcomeUnchanged: the translation equals the original text.
	OutcomeUnchanged
	// OutcomeChanged: the node text was replaced.
	OutcomeChanged
	// OutcomeSkipped: the unit had already been reconciled.
	OutcomeSkipped
)

// Reconciler applies completions to the document. It must be driven by a
// single goroutine.
type Reconciler struct {
	opts     *Options
	changes  []Change
	failures []*TranslationError
	counts   map[Outcome]int
}

// NewReconciler returns a Reconciler reporting through opts. opts may be nil.
func NewReconciler(opts *Options) *Reconciler {
	if opts == nil {
		opts = &Options{}
	}
	return &Reconciler{opts: opts, counts: make(map[Outcome]int)}
}

// Reconcile applies one completion. Each unit is applied at most once;
// later completions for the same unit return OutcomeSkipped.
func (r *Reconciler) Reconcile(c Completion) Outcome {
	u := c.Unit
	if u.Status == StatusReconciled {
		return OutcomeSkipped
	}
	u.Status = StatusReconciled
	u.Result = c.Result

	out := r.apply(u, c.Result)
	r.counts[out]++
	return out
}

func (r *Reconciler) apply(u *Unit, res Result) Outcome {
	if res.Err != nil {
		var te *TranslationError
		if !errors.As(res.Err, &te) {
			te = &TranslationError{UnitID: u.ID, Reason: ReasonRequest, Err: res.Err}
		}
		r.failures = append(r.failures, te)
		r.opts.logError("unit %s: translation failed: %v (original text: %q)", u.ID, te.Err, u.Original)
		return OutcomeFailed
	}

	if res.Text == u.Original {
		return OutcomeUnchanged
	}

	u.node.SetText(res.Text)
	ch := Change{ID: u.ID, Before: u.Original, After: res.Text}
	r.changes = append(r.changes, ch)
	r.opts.log("unit %s: %q -> %q", u.ID, u.Original, res.Text)
	if r.opts.OnChange != nil {
		r.opts.OnChange(ch)
	}
	return OutcomeChanged
}

// Changes returns the applied changes in reconciliation order.
func (r *Reconciler) Changes() []Change { return r.changes }

// Failures returns the failed units' errors in reconciliation order.
func (r *Reconciler) Failures() []*TranslationError { return r.failures }

// Count returns how many completions ended with the given outcome.
func (r *Reconciler) Count(o Outcome) int { return r.counts[o] }
