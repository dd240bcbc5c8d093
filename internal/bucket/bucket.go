package bucket

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"os"

	cloudstorage "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// Client wraps the object storage bucket that holds catalog 3D models,
// thumbnails and user-uploaded photo frame images.
type Client struct {
	bucket *cloudstorage.BucketHandle
}

// Object key layout, shared with the retention sweep.
func ObjectKey(itemID uuid.UUID) string     { return fmt.Sprintf("item/object/%s", itemID) }
func ThumbnailKey(itemID uuid.UUID) string  { return fmt.Sprintf("item/thumbnail/%s", itemID) }
func UserImageKey(imageID uuid.UUID) string { return fmt.Sprintf("item/user_image/%s.png", imageID) }

// New initializes the storage client. Credentials come from the
// STORAGE_SERVICE_ACCOUNT_JSON environment variable (Base64 encoded) with
// a fallback to a local service account key file, and the bucket name from
// STORAGE_BUCKET.
func New(ctx context.Context, localFilePath string) (*Client, error) {
	var opt option.ClientOption

	encodedCreds := os.Getenv("STORAGE_SERVICE_ACCOUNT_JSON")
	if encodedCreds != "" {
		decoded, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 storage credentials: %v", err)
		}
		opt = option.WithCredentialsJSON(decoded)
		log.Println("Storage: initializing from STORAGE_SERVICE_ACCOUNT_JSON environment variable.")
	} else {
		if _, err := os.Stat(localFilePath); os.IsNotExist(err) {
			return nil, fmt.Errorf("local service account file not found: %s, and STORAGE_SERVICE_ACCOUNT_JSON is not set", localFilePath)
		}
		opt = option.WithCredentialsFile(localFilePath)
		log.Printf("Storage: initializing from local file: %s.", localFilePath)
	}

	bucketName := os.Getenv("STORAGE_BUCKET")
	if bucketName == "" {
		return nil, fmt.Errorf("STORAGE_BUCKET environment variable is not set")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucketName}, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %v", err)
	}
	storageClient, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting storage client: %v", err)
	}
	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("error getting default bucket: %v", err)
	}

	return &Client{bucket: bucket}, nil
}

// Upload streams an object to the bucket under key.
func (c *Client) Upload(ctx context.Context, key string, r io.Reader, contentType string) error {
	w := c.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload of %s: %w", key, err)
	}
	return nil
}

// Delete removes an object. Missing objects are not an error; retention
// sweeps and re-uploads both hit keys that may already be gone.
func (c *Client) Delete(ctx context.Context, key string) error {
	err := c.bucket.Object(key).Delete(ctx)
	if err != nil && err != cloudstorage.ErrObjectNotExist {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
