package storage

import (
	"errors"
	"io"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrInvalidKey = errors.New("invalid blob key")
)

// BlobStore holds uploaded question sources and rendered artifacts.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	SignedURL(key string) (string, error) // fs returns "file://..." for dev
}

// SourceKey is where the original markup of an imported exam is kept.
func SourceKey(examID string) string { return "sources/" + examID + ".tex" }

// RenderKey is where a rendered view of a question is cached.
func RenderKey(questionID, format string) string {
	return "renders/" + questionID + "." + format
}
