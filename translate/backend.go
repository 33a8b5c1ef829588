package translate

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Placeholders recognised in a prompt template.
const (
	MsgPlaceholder  = "{msg}"
	LangPlaceholder = "{lang}"
)

// Client sends one prompt to a chat-completions endpoint and returns the
// assistant's reply.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Translator turns one source string into its translation. Implementations
// never fail with a Go error: failures are reported inside the Result.
type Translator interface {
	Translate(ctx context.Context, text string) Result
}

// Result is the outcome of translating one unit. On failure Text holds the
// original input and Err is a *TranslationError.
type Result struct {
	Text string
	Err  error
}

// Failed reports whether the translation did not succeed.
func (r Result) Failed() bool { return r.Err != nil }


// ---------------------------------------------------------------------------
// Backend
// ---------------------------------------------------------------------------

// Backend is the Translator built on a Client and a prompt template. It is
// safe for concurrent use.
type Backend struct {
	client   Client
	template string
	lang     string
	limiter  *rate.Limiter
}

// BackendOption configures a Backend.
type BackendOption func(*Backend)

// WithLanguage sets the value substituted for {lang} in the template.
func WithLanguage(lang string) BackendOption {
	return func(b *Backend) { b.lang = lang }
}

// WithRateLimit paces outgoing requests to rps per second (burst 1).
// Zero or negative disables pacing.
func WithRateLimit(rps float64) BackendOption {
	return func(b *Backend) {
		if rps > 0 {
			b.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewBackend returns a Backend sending prompts built from template through
// client. A nil client is allowed: every translation then fails with
// ReasonNoClient.
func NewBackend(client Client, template string, opts ...BackendOption) *Backend {
	b := &Backend{client: client, template: template}
	for _, o := range opts {
		o(b)
	}
	return b
}

// BuildPrompt substitutes text for {msg} and lang for {lang} in template.
// The language is substituted first so source text containing "{lang}" is
// left alone.
func BuildPrompt(template, lang, text string) string {
	p := strings.ReplaceAll(template, LangPlaceholder, lang)
	return strings.ReplaceAll(p, MsgPlaceholder, text)
}

// Translate implements Translator.
func (b *Backend) Translate(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Text: text}
	}
	if b == nil || b.client == nil {
		return failure(text, ReasonNoClient, errors.New("API client is not initialized"))
	}
	if err := ctx.Err(); err != nil {
		return failure(text, ReasonCanceled, err)
	}
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return failure(text, ReasonCanceled, err)
		}
	}

	out, err := b.client.Complete(ctx, BuildPrompt(b.template, b.lang, text))
	if err != nil {
		return failure(text, classify(ctx, err), err)
	}
	return Result{Text: out}
}

func failure(text string, reason Reason, err error) Result {
	return Result{Text: text, Err: &TranslationError{Reason: reason, Err: err}}
}

func classify(ctx context.Context, err error) Reason {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case ctx.Err() != nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	case errors.Is(err, ErrMalformedResponse):
		return ReasonMalformed
	case errors.As(err, &apiErr), errors.As(err, &reqErr):
		return ReasonAPI
	default:
		return ReasonRequest
	}
}

// ---------------------------------------------------------------------------
// Static translator
// ---------------------------------------------------------------------------

// Identity is a Translator that returns every input unchanged. It is used
// for dry runs.
type Identity struct{}

// Translate implements Translator.
func (Identity) Translate(_ context.Context, text string) Result { return Result{Text: text} }

var (
	_ Translator = (*Backend)(nil)
	_ Translator = Identity{}
)
