package storage

import (
	"context"
	"io"
)

// Buckets used by the application.
const (
	BucketPatientDocuments = "patient-documents"
	BucketInvoices         = "invoices"
)

// Storage is the object-storage boundary: opaque blobs addressed by bucket
// and path. Access control lives outside this interface.
type Storage interface {
	Upload(ctx context.Context, bucket, path string, r io.Reader) (string, error)
	Download(ctx context.Context, bucket, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, bucket, path string) error
}
