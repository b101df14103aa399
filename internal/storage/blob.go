package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidPath = errors.New("invalid storage path")
)

// Object describes a stored blob.
type Object struct {
	Path        string
	URL         string
	Size        int64
	ContentType string
}

type BlobStore interface {
	Put(ctx context.Context, p string, r io.Reader, contentType string) (Object, error)
	Delete(ctx context.Context, p string) error
}

// Document is one record in a named collection.
type Document struct {
	ID        string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentStore is a tiny collection/document API; implementations stamp
// createdAt and updatedAt themselves.
type DocumentStore interface {
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	Update(ctx context.Context, collection, id string, data map[string]any) error
	Delete(ctx context.Context, collection, id string) error
}

// cleanPath rejects absolute paths and ".." segments before a storage path is
// used. Dots inside a name, as in "report..v2.pdf", are fine.
func cleanPath(p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, `\`) || slices.Contains(strings.Split(p, "/"), "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return path.Clean(p), nil
}

// LocalStore keeps blobs on disk under root and serves them from baseURL.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *LocalStore) Put(_ context.Context, p string, r io.Reader, contentType string) (Object, error) {
	p, err := cleanPath(p)
	if err != nil {
		return Object{}, err
	}

	full := filepath.Join(s.root, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Object{}, fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return Object{}, fmt.Errorf("create upload: %w", err)
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(full)
		return Object{}, fmt.Errorf("write upload: %w", err)
	}

	return Object{
		Path:        p,
		URL:         s.baseURL + "/" + p,
		Size:        n,
		ContentType: contentType,
	}, nil
}

func (s *LocalStore) Delete(_ context.Context, p string) error {
	p, err := cleanPath(p)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(p))); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}
