package translate

import (
	"context"

	"github.com/minios-linux/bg3loc/locafile"
)

// Summary describes one translated document.
type Summary struct {
	Units     int
	Changed   int
	Unchanged int
	Failed    int
	Changes   []Change
	Failures  []*TranslationError
}

// Run translates doc in place. It returns once every unit has been
// reconciled; per-unit failures are reported through opts and counted in
// the summary, never returned.
func Run(ctx context.Context, doc *locafile.File, tr Translator, opts Options) Summary {
	units := Extract(doc)
	total := len(units)
	opts.log("%d translatable entries", total)

	rec := NewReconciler(&opts)
	done := 0
	for c := range Dispatch(ctx, units, tr, opts.effectiveMaxConcurrent()) {
		if rec.Reconcile(c) == OutcomeSkipped {
			continue
		}
		done++
		if opts.OnProgress != nil {
			opts.OnProgress(done, total)
		}
	}

	return Summary{
		Units:     total,
		Changed:   rec.Count(OutcomeChanged),
		Unchanged: rec.Count(OutcomeUnchanged),
		Failed:    rec.Count(OutcomeFailed),
		Changes:   rec.Changes(),
		Failures:  rec.Failures(),
	}
}

// TranslateFile parses in, translates it and writes the result to out.
// A document that cannot be parsed yields a *ParseError and nothing is
// written; a failed write yields a *WriteError.
func TranslateFile(ctx context.Context, in, out string, tr Translator, opts Options) (Summary, error) {
	doc, err := locafile.ParseFile(in)
	if err != nil {
		return Summary{}, &ParseError{Path: in, Err: err}
	}

	sum := Run(ctx, doc, tr, opts)

	if err := doc.WriteFile(out); err != nil {
		return sum, &WriteError{Path: out, Err: err}
	}
	opts.debug("wrote %s", out)
	return sum, nil
}
