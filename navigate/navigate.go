// Package navigate opens external targets (install pages, provider deep
// links) on behalf of the bridge. Navigation is fire-and-forget: callers
// never wait for the user to act on the opened target.
package navigate

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/pkg/browser"
)

// Target is an external navigation request.
type Target struct {
	// URI is the target to open (https or a provider deep link scheme).
	URI string
	// Package restricts handling to one application. Empty means any handler.
	Package string
}

// Navigator opens external targets.
type Navigator interface {
	Open(ctx context.Context, target Target) error
}

// Func adapts a plain function to a Navigator.
type Func func(ctx context.Context, target Target) error

// Open calls f.
func (f Func) Open(ctx context.Context, target Target) error {
	return f(ctx, target)
}

// Browser opens targets with the desktop's default URL handler.
// The package restriction cannot be enforced by the desktop handler and is
// ignored; the provider registers its deep link scheme instead.
type Browser struct {
	// Stdout and Stderr receive the handler process output. Default: discarded.
	Stdout io.Writer
	Stderr io.Writer
}

// Open launches the default handler for target.URI.
func (b *Browser) Open(_ context.Context, target Target) error {
	if target.URI == "" {
		return errors.New("navigate: empty URI")
	}
	// pkg/browser writes to package-level writers.
	browserMu.Lock()
	defer browserMu.Unlock()
	browser.Stdout = orDiscard(b.Stdout)
	browser.Stderr = orDiscard(b.Stderr)
	return browser.OpenURL(target.URI)
}

var browserMu sync.Mutex

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

// Recorder is a Navigator that records targets instead of opening them.
// Err, when set, is returned from every Open call after recording.
type Recorder struct {
	Err error

	mu      sync.Mutex
	targets []Target
}

// Open records target.
func (r *Recorder) Open(_ context.Context, target Target) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = append(r.targets, target)
	return r.Err
}

// Targets returns a copy of the recorded targets in call order.
func (r *Recorder) Targets() []Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Target, len(r.targets))
	copy(out, r.targets)
	return out
}

// Verify implementations satisfy Navigator.
var (
	_ Navigator = (*Browser)(nil)
	_ Navigator = (*Recorder)(nil)
	_ Navigator = Func(nil)
)
