package storage

import (
	"context"
	"io"
	"net/http"
	"time"

	gcs "cloud.google.com/go/storage"
)

type gcsAdapter struct {
	client         *gcs.Client
	googleAccessID string
	privateKey     []byte
}

// NewGCSAdapter wraps a Google Cloud Storage client. Access id and private
// key come from the service account and are only used for URL signing.
func NewGCSAdapter(client *gcs.Client, googleAccessID string, privateKey string) Storage {
	return &gcsAdapter{
		client:         client,
		googleAccessID: googleAccessID,
		privateKey:     []byte(privateKey),
	}
}

func (a *gcsAdapter) PutObject(ctx context.Context, bucketName string, objectName string, file io.Reader, contentType string, metadata map[string]string) error {
	w := a.client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = metadata

	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (a *gcsAdapter) DeleteObject(ctx context.Context, bucketName string, objectName string) error {
	return a.client.Bucket(bucketName).Object(objectName).Delete(ctx)
}

func (a *gcsAdapter) SignedURL(bucketName string, objectName string, expiry time.Duration) (string, error) {
	return gcs.SignedURL(bucketName, objectName, &gcs.SignedURLOptions{
		GoogleAccessID: a.googleAccessID,
		PrivateKey:     a.privateKey,
		Method:         http.MethodGet,
		Expires:        time.Now().Add(expiry),
	})
}
