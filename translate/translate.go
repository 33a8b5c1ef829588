// Package translate machine-translates the <content> entries of a
// localization document through a chat-completions backend.
//
// The pipeline is Extract -> Dispatch -> Reconcile: every non-blank entry
// becomes a Unit, units are translated by a bounded pool of goroutines, and
// a single consumer writes the results back into the document in
// completion order.
package translate

import (
	"net/http"
	"net/url"
	"time"
)

// DefaultMaxConcurrent is the number of translation requests allowed in
// flight when Options.MaxConcurrent is not set.
const DefaultMaxConcurrent = 100

// ---------------------------------------------------------------------------
// Translation options
// ---------------------------------------------------------------------------

// Options controls a pipeline run.
type Options struct {
	// MaxConcurrent is the maximum number of units translated at once.
	MaxConcurrent int
	// Verbose enables debug logging through OnLog.
	Verbose bool
	// OnProgress is called once per reconciled unit with done strictly
	// increasing from 1 to total.
	OnProgress func(done, total int)
	// OnLog emits informational messages.
	OnLog func(format string, args ...any)
	// OnError emits error messages (failed units).
	OnError func(format string, args ...any)
	// OnChange is called for every unit whose text was replaced.
	OnChange func(c Change)
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) debug(format string, args ...any) {
	if o.Verbose {
		o.log(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveMaxConcurrent() int {
	if o.MaxConcurrent > 0 {
		return o.MaxConcurrent
	}
	return DefaultMaxConcurrent
}

// ---------------------------------------------------------------------------
// HTTP client with real proxy support
// ---------------------------------------------------------------------------

// makeHTTPClient builds the transport used by the chat-completions client.
// A zero timeout means no client-side timeout.
func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}
	// Default is 2 idle connections per host, far below the worker count.
	transport.MaxIdleConnsPerHost = DefaultMaxConcurrent

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
