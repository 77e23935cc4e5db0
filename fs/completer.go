// Package fs caches evaluator completions on the local filesystem.
package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fwojciec/selfeval"
)

// DefaultCacheDir returns <user cache dir>/selfeval, honoring XDG_CACHE_HOME.
// It falls back to the system temp dir when no cache dir can be determined.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "selfeval")
}

// Compile-time interface verification.
var _ selfeval.Completer = (*Completer)(nil)

// Completer serves repeated evaluation requests from disk. Only replies that
// parse to a Yes or No verdict are stored, so an inconclusive reply is asked
// again next time.
type Completer struct {
	inner  selfeval.Completer
	dir    string
	logger *slog.Logger
}

// CompleterOption configures a Completer.
type CompleterOption func(*Completer)

// WithLogger sets the logger for cache read and write failures.
func WithLogger(logger *slog.Logger) CompleterOption {
	return func(c *Completer) {
		c.logger = logger
	}
}

// NewCompleter wraps inner with a cache rooted at dir.
func NewCompleter(inner selfeval.Completer, dir string, opts ...CompleterOption) *Completer {
	c := &Completer{
		inner:  inner,
		dir:    dir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete implements selfeval.Completer.
func (c *Completer) Complete(ctx context.Context, req selfeval.CompletionRequest) (*selfeval.Completion, error) {
	path := filepath.Join(c.dir, entryName(req))

	if hit := c.lookup(ctx, path); hit != nil {
		c.logger.DebugContext(ctx, "completion cache hit", "path", path)
		return hit, nil
	}

	resp, err := c.inner.Complete(ctx, req)
	if err != nil || resp == nil {
		return resp, err
	}

	if !conclusive(resp) {
		return resp, nil
	}
	if err := c.store(path, resp); err != nil {
		c.logger.WarnContext(ctx, "failed to cache completion", "path", path, "err", err)
	}
	return resp, nil
}

// entryName derives the cache file name from the model and messages.
func entryName(req selfeval.CompletionRequest) string {
	h := sha256.New()
	// Encoding a struct of strings cannot fail.
	_ = json.NewEncoder(h).Encode(req)
	return hex.EncodeToString(h.Sum(nil)) + ".json"
}

func conclusive(resp *selfeval.Completion) bool {
	return selfeval.ParseVerdict(resp.Text) != selfeval.VerdictUnsure
}

// lookup returns the cached completion at path, or nil on a miss. Unreadable
// or inconclusive entries count as misses.
func (c *Completer) lookup(ctx context.Context, path string) *selfeval.Completion {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		c.logger.WarnContext(ctx, "failed to read cached completion", "path", path, "err", err)
		return nil
	}

	var cached selfeval.Completion
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.WarnContext(ctx, "ignoring corrupt cache entry", "path", path, "err", err)
		return nil
	}
	if !conclusive(&cached) {
		return nil
	}
	return &cached
}

// store writes resp to path through a temp file so concurrent readers never
// see a partial entry.
func (c *Completer) store(path string, resp *selfeval.Completion) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
