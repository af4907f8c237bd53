// Package library resolves a session's content digest to the target-sequence
// source it was recorded against, by hashing files under a library directory.
package library

import (
	"context"
	"crypto/md5" //nolint:gosec // content addressing matches the session format, not a security boundary
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/aimdrift/aimdrift/pkg/logger"
	"github.com/aimdrift/aimdrift/pkg/metrics"
)

const sourceExt = ".osu"

// errFound aborts the walk once the digest is matched.
var errFound = errors.New("found")

// Locator finds target-sequence sources by whole-file MD5 digest. The scan is
// linear with early exit on first match; an optional sqlite index caches
// digests keyed by file size and mtime so unchanged files are not re-hashed.
type Locator struct {
	root    string
	index   *Index
	log     logger.Logger
	metrics *metrics.Manager
}

// NewLocator creates a locator over the given library root.
func NewLocator(root string, opts ...LocatorOption) *Locator {
	l := &Locator{
		root:    root,
		metrics: metrics.Get(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FindByDigest returns the path of the source whose contents hash to digest
// (lowercase MD5 hex). It returns ErrNotFound when no file matches.
func (l *Locator) FindByDigest(ctx context.Context, digest string) (string, error) {
	digest = strings.ToLower(strings.TrimSpace(digest))
	if digest == "" {
		return "", fmt.Errorf("%w: empty digest", ErrNotFound)
	}

	// Fast path: a previously indexed file whose size and mtime still match.
	if path, ok := l.fromIndex(digest); ok {
		l.metrics.RecordLibraryIndexHit()
		return path, nil
	}

	var (
		found       string
		filesHashed int
		bytesHashed int64
	)
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), sourceExt) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if entry, ok := l.cached(path, info); ok {
			if entry.Digest == digest {
				found = path
				return errFound
			}
			return nil
		}

		sum, err := hashFile(path)
		if err != nil {
			return nil
		}
		filesHashed++
		bytesHashed += info.Size()
		l.metrics.RecordLibraryFileHashed()
		l.remember(Entry{Path: path, Digest: sum, Size: info.Size(), ModTime: info.ModTime().UnixNano()})

		if sum == digest {
			found = path
			return errFound
		}
		return nil
	})

	if l.log != nil && filesHashed > 0 {
		l.log.Debug(ctx, "library scan",
			logger.Int("files_hashed", filesHashed),
			logger.String("bytes_hashed", humanize.Bytes(uint64(bytesHashed))))
	}

	switch {
	case errors.Is(err, errFound):
		return found, nil
	case err != nil:
		return "", fmt.Errorf("scan library: %w", err)
	default:
		return "", fmt.Errorf("%w: %s", ErrNotFound, digest)
	}
}

// fromIndex resolves a digest through the index and re-verifies the hit
// against the filesystem; stale entries are evicted.
func (l *Locator) fromIndex(digest string) (string, bool) {
	if l.index == nil {
		return "", false
	}
	entry, ok := l.index.LookupDigest(digest)
	if !ok {
		return "", false
	}
	info, err := os.Stat(entry.Path)
	if err != nil || info.Size() != entry.Size || info.ModTime().UnixNano() != entry.ModTime {
		l.index.Forget(entry.Path)
		return "", false
	}
	return entry.Path, true
}

// cached returns the indexed entry for path when size and mtime still match.
func (l *Locator) cached(path string, info fs.FileInfo) (Entry, bool) {
	if l.index == nil {
		return Entry{}, false
	}
	entry, ok := l.index.LookupPath(path)
	if !ok || entry.Size != info.Size() || entry.ModTime != info.ModTime().UnixNano() {
		return Entry{}, false
	}
	return entry, true
}

func (l *Locator) remember(e Entry) {
	if l.index == nil {
		return
	}
	_ = l.index.Put(e)
}

// hashFile returns the lowercase MD5 hex digest of a file's contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New() //nolint:gosec // see package note on content addressing
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// LocatorOption applies a configuration option to the Locator.
type LocatorOption func(*Locator)

// WithIndex attaches a digest index used as a cache in front of the scan.
func WithIndex(index *Index) LocatorOption {
	return func(l *Locator) {
		l.index = index
	}
}

// WithLogger sets a logger for scan diagnostics.
func WithLogger(log logger.Logger) LocatorOption {
	return func(l *Locator) {
		l.log = log
	}
}

// WithMetrics sets the metrics manager. Defaults to the global manager.
func WithMetrics(m *metrics.Manager) LocatorOption {
	return func(l *Locator) {
		if m != nil {
			l.metrics = m
		}
	}
}
