// Package content resolves document content from inline text or remote URIs.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recall/internal/domain"
	"github.com/kailas-cloud/recall/internal/domain/document"
)

// Defaults for remote fetches.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultMaxBytes = 20 << 20
)

// objects opens S3 objects (ISP).
type objects interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// S3Config holds the object storage connection for s3:// URIs.
// An empty Endpoint disables s3:// resolution.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// Config holds resolver settings.
type Config struct {
	Timeout  time.Duration
	MaxBytes int64
	S3       S3Config
}

// Resolver turns a document into embedder input.
type Resolver struct {
	http     *http.Client
	objects  objects
	maxBytes int64
	logger   *zap.Logger
}

// NewResolver creates a resolver. The S3 client is created only when an endpoint is configured.
func NewResolver(cfg Config, logger *zap.Logger) (*Resolver, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	r := &Resolver{
		http:     &http.Client{Timeout: timeout},
		maxBytes: cfg.MaxBytes,
		logger:   logger,
	}
	if r.maxBytes <= 0 {
		r.maxBytes = DefaultMaxBytes
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}

	if cfg.S3.Endpoint != "" {
		client, err := minio.New(cfg.S3.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.S3.AccessKey, cfg.S3.SecretKey, ""),
			Secure: cfg.S3.UseSSL,
			Region: cfg.S3.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("create s3 client: %w", err)
		}
		r.objects = minioObjects{client: client}
	}

	return r, nil
}

// Resolve returns inline content as text and fetches URI content as bytes.
// A document without content yields domain.ErrNoContent.
func (r *Resolver) Resolve(ctx context.Context, doc document.Document) (domain.Content, error) {
	switch doc.Source() {
	case document.SourceRaw:
		return domain.TextContent(doc.ContentRaw()), nil
	case document.SourceURI:
		data, err := r.Fetch(ctx, doc.ContentURI())
		if err != nil {
			return domain.Content{}, err
		}
		return domain.BytesContent(data), nil
	default:
		return domain.Content{}, domain.ErrNoContent
	}
}

// Fetch downloads an http(s):// or s3://bucket/key URI.
// Every failure wraps domain.ErrContentFetch.
func (r *Resolver) Fetch(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fetchError(uri, err)
	}

	start := time.Now()
	var data []byte

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		data, err = r.fetchHTTP(ctx, uri)
	case "s3":
		data, err = r.fetchS3(ctx, u)
	default:
		err = fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if err != nil {
		return nil, fetchError(uri, err)
	}

	r.logger.Debug("content fetched",
		zap.String("uri", uri),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return data, nil
}

func (r *Resolver) fetchHTTP(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return r.readLimited(resp.Body)
}

func (r *Resolver) fetchS3(ctx context.Context, u *url.URL) ([]byte, error) {
	if r.objects == nil {
		return nil, errors.New("s3 storage is not configured")
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, errors.New("s3 uri must be s3://bucket/key")
	}

	obj, err := r.objects.Open(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = obj.Close() }()

	return r.readLimited(obj)
}

func (r *Resolver) readLimited(rd io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(rd, r.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > r.maxBytes {
		return nil, fmt.Errorf("content exceeds %d bytes", r.maxBytes)
	}
	return data, nil
}

func fetchError(uri string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrContentFetch, uri, err)
}

// minioObjects adapts *minio.Client to objects.
type minioObjects struct {
	client *minio.Client
}

func (m minioObjects) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}
