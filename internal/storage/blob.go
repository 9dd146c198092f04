package storage

import "io"

// BlobStore is the video-asset store. Production deployments point this at a
// hosted object store; the filesystem implementation serves development.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	SignedURL(key string) (string, error)
}
