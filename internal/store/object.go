// Package store provides the durable collaborators of the pipeline: a
// lecture-scoped object store for media artifacts and a key-value store for
// records and indexes.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrNotFound is returned when a key does not exist in a store.
var ErrNotFound = errors.New("not found")

// ObjectInfo describes one stored object under a prefix.
type ObjectInfo struct {
	Key  string
	Name string
}

// ObjectStore persists binary artifacts (audio, frames, stage JSON) under
// lecture-scoped keys. Keys use forward slashes regardless of backend.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	PutFile(ctx context.Context, key, path string) error
	PutDir(ctx context.Context, prefix, dir string) error
	// ListPrefix returns objects under prefix sorted by key, so frame
	// sequences come back in chronological order.
	ListPrefix(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// Source identifies where DownloadToTemp fetches from: a remote URL or an
// object-store key. Exactly one must be set.
type Source struct {
	URL string
	Key string
}

// DownloadToTemp fetches a source into a local temp file and returns its
// path. The caller owns the file and must remove it.
func DownloadToTemp(ctx context.Context, store ObjectStore, src Source, suffix string) (string, error) {
	var data []byte
	var err error

	switch {
	case src.URL != "":
		data, err = fetchURL(ctx, src.URL)
	case src.Key != "":
		data, err = GetWithRetry(ctx, store, src.Key)
	default:
		return "", errors.New("either url or key required")
	}
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "lectio-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// retryPolicy bounds transient-failure retries for store operations:
// exponential backoff, at most 3 retries, cancellable via ctx.
func retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	return backoff.WithContext(backoff.WithMaxRetries(b, 3), ctx)
}

// GetWithRetry reads a key, retrying transient failures. ErrNotFound is
// permanent and returned immediately.
func GetWithRetry(ctx context.Context, store ObjectStore, key string) ([]byte, error) {
	var data []byte
	op := func() error {
		var err error
		data, err = store.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}
	if err := backoff.Retry(op, retryPolicy(ctx)); err != nil {
		return nil, err
	}
	return data, nil
}

// PutWithRetry writes a key, retrying transient failures.
func PutWithRetry(ctx context.Context, store ObjectStore, key string, data []byte) error {
	op := func() error {
		return store.Put(ctx, key, data)
	}
	return backoff.Retry(op, retryPolicy(ctx))
}

// PutJSON marshals v and writes it at key.
func PutJSON(ctx context.Context, store ObjectStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return PutWithRetry(ctx, store, key, data)
}

// GetJSON reads key and unmarshals it into out.
func GetJSON(ctx context.Context, store ObjectStore, key string, out any) error {
	data, err := GetWithRetry(ctx, store, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}
