package storage

import (
	"context"
	"io"
	"time"
)

// Object describes a stored transcript.
type Object struct {
	// Path is slash-separated and relative to the backend root.
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Storage is where rendered transcripts are kept. Object paths are
// slash-separated and relative to the backend root; a backend must refuse
// paths that escape it.
type Storage interface {
	// Upload replaces the object at path with the contents of r.
	Upload(ctx context.Context, path string, r io.Reader) error
	// Download opens the object at path. The caller closes it.
	Download(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes the object at path. A missing object is not an error.
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	// URL locates the object for the user, e.g. file:///srv/transcripts/a.txt.
	URL(ctx context.Context, path string) (string, error)
	// List returns objects under prefix ordered by path.
	List(ctx context.Context, prefix string) ([]Object, error)
}
