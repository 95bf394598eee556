// Package blobstore uploads image blobs to an S3-compatible object
// storage service and returns durable public URLs.
package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ayurwell/ayurcms/config"
)

// UploadError reports a failed remote upload. The caller must not
// assume partial success.
type UploadError struct {
	Key string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("image upload failed: key=%s: %s", e.Key, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// DeleteError reports a failed remote delete. Callers may treat it as
// non-fatal; it only affects storage hygiene.
type DeleteError struct {
	Key string
	Err error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("image delete failed: key=%s: %s", e.Key, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}

// Store wraps one bucket of an S3-compatible storage service.
type Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func New(cfg *config.StorageConfig) (*Store, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("storage access_key and secret_key are required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.PublicURL == "" {
		return nil, errors.New("storage public_url is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, errors.Wrap(err, "load storage credentials")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

// Upload writes data under a collision-resistant key inside folder and
// returns the public URL of the stored object.
func (s *Store) Upload(ctx context.Context, data []byte, originalName, folder string) (string, error) {
	key := buildKey(folder, originalName)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(http.DetectContentType(data)),
		CacheControl: aws.String("max-age=3600"),
	})
	if err != nil {
		return "", &UploadError{Key: key, Err: err}
	}

	ref := s.publicURL + "/" + key
	zap.L().Info("blob uploaded", zap.String("key", key), zap.String("url", ref))
	return ref, nil
}

// Delete removes the object a public URL refers to.
func (s *Store) Delete(ctx context.Context, fileURL string) error {
	key, err := objectKeyFromURL(fileURL)
	if err != nil {
		return &DeleteError{Key: fileURL, Err: err}
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return &DeleteError{Key: key, Err: err}
	}
	zap.L().Info("blob deleted", zap.String("key", key))
	return nil
}

// buildKey produces "<folder>/<unix-millis>-<sanitized name>".
func buildKey(folder, originalName string) string {
	return fmt.Sprintf("%s/%d-%s", strings.Trim(folder, "/"), time.Now().UnixMilli(), sanitizeName(originalName))
}

func sanitizeName(name string) string {
	// Keep only the base name and avoid characters that need escaping
	// in URLs or object keys.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" {
		name = "file"
	}
	return name
}

// objectKeyFromURL recovers "folder/filename" from a public URL, the
// last two path segments.
func objectKeyFromURL(fileURL string) (string, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", err
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return "", fmt.Errorf("unrecognized blob url: %s", fileURL)
	}
	return strings.Join(parts[len(parts)-2:], "/"), nil
}
