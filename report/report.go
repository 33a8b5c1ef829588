// Package report writes a YAML record of a translation run: which
// documents were processed, how many units changed or failed, and the
// before/after text of every change.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/bg3loc/translate"
)

// Version is the report format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Report is the top-level document.
type Report struct {
	Version  int        `yaml:"version"`
	RunID    string     `yaml:"run_id"`
	Started  time.Time  `yaml:"started"`
	Finished time.Time  `yaml:"finished,omitempty"`
	Model    string     `yaml:"model,omitempty"`
	Target   string     `yaml:"target_language,omitempty"`
	Archive  string     `yaml:"archive,omitempty"`
	Output   string     `yaml:"output,omitempty"`
	Docs     []Document `yaml:"documents"`

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// Document is the outcome for one localization file.
type Document struct {
	Mod       string             `yaml:"mod,omitempty"`
	Source    string             `yaml:"source"`
	Output    string             `yaml:"output,omitempty"`
	Units     int                `yaml:"units"`
	Changed   int                `yaml:"changed"`
	Unchanged int                `yaml:"unchanged"`
	Failed    int                `yaml:"failed"`
	Error     string             `yaml:"error,omitempty"`
	Changes   []translate.Change `yaml:"changes,omitempty"`
	Failures  []Failure          `yaml:"failures,omitempty"`
}

// Failure is one unit that kept its original text.
type Failure struct {
	ID     string `yaml:"id"`
	Reason string `yaml:"reason"`
	Error  string `yaml:"error"`
}

// Totals sums the per-document counters.
type Totals struct {
	Documents       int
	FailedDocuments int
	Units           int
	Changed         int
	Unchanged       int
	Failed          int
}

// ---------------------------------------------------------------------------
// Building
// ---------------------------------------------------------------------------

// New starts a report that Save writes to path. An empty path gives a
// report that is only kept in memory.
func New(path, model, target string) *Report {
	return &Report{
		Version: Version,
		RunID:   uuid.NewString(),
		Started: time.Now().UTC().Truncate(time.Second),
		Model:   model,
		Target:  target,
		path:    path,
	}
}

// Add records the outcome of one document. err is the document-level
// ParseError or WriteError, if any.
func (r *Report) Add(mod, source, output string, sum translate.Summary, err error) {
	d := Document{
		Mod:       mod,
		Source:    filepath.ToSlash(source),
		Output:    filepath.ToSlash(output),
		Units:     sum.Units,
		Changed:   sum.Changed,
		Unchanged: sum.Unchanged,
		Failed:    sum.Failed,
		Changes:   sum.Changes,
	}
	if err != nil {
		d.Error = err.Error()
	}
	for _, f := range sum.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		d.Failures = append(d.Failures, Failure{ID: f.UnitID, Reason: string(f.Reason), Error: msg})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.Docs = append(r.Docs, d)
}

// Totals returns the counters summed over all documents.
func (r *Report) Totals() Totals {
	r.mu.Lock()
	defer r.mu.Unlock()

	var t Totals
	for _, d := range r.Docs {
		t.Documents++
		if d.Error != "" {
			t.FailedDocuments++
		}
		t.Units += d.Units
		t.Changed += d.Changed
		t.Unchanged += d.Unchanged
		t.Failed += d.Failed
	}
	return t
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Path returns where Save writes.
func (r *Report) Path() string { return r.path }

// Save stamps the finish time and writes the report. It is a no-op for an
// in-memory report.
func (r *Report) Save() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.path == "" {
		return nil
	}
	r.Finished = time.Now().UTC().Truncate(time.Second)

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", r.path, err)
	}
	return nil
}

// Load reads a report written by Save.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	r := &Report{}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if r.Version != Version {
		return nil, fmt.Errorf("%s: unsupported report version %d", path, r.Version)
	}
	r.path = path
	return r, nil
}
