package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/starscan/blobstore"
	miniostore "github.com/hupe1980/starscan/blobstore/minio"
	s3store "github.com/hupe1980/starscan/blobstore/s3"
	"github.com/hupe1980/starscan/internal/config"
)

// storeLocation is a parsed --store value.
type storeLocation struct {
	Scheme string // "", "s3" or "minio"
	Bucket string
	Prefix string
	Dir    string
}

func parseStoreURL(raw string) (storeLocation, error) {
	if !strings.Contains(raw, "://") {
		return storeLocation{Dir: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return storeLocation{}, fmt.Errorf("invalid store %q: %w", raw, err)
	}
	switch u.Scheme {
	case "s3", "minio":
	case "file":
		return storeLocation{Dir: u.Path}, nil
	default:
		return storeLocation{}, fmt.Errorf("invalid store %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Host == "" {
		return storeLocation{}, fmt.Errorf("invalid store %q: missing bucket", raw)
	}
	prefix := strings.Trim(u.Path, "/")
	if prefix != "" {
		prefix += "/"
	}
	return storeLocation{Scheme: u.Scheme, Bucket: u.Host, Prefix: prefix}, nil
}

func openStore(ctx context.Context, raw string, cfg config.Config) (blobstore.BlobStore, error) {
	loc, err := parseStoreURL(raw)
	if err != nil {
		return nil, err
	}

	switch loc.Scheme {
	case "s3":
		opts := []s3store.Option{s3store.WithPrefix(loc.Prefix)}
		if cfg.S3.Region != "" {
			opts = append(opts, s3store.WithRegion(cfg.S3.Region))
		}
		return s3store.New(ctx, loc.Bucket, opts...)
	case "minio":
		if cfg.MinIO.Endpoint == "" {
			return nil, fmt.Errorf("minio store %q: minio.endpoint is not configured", raw)
		}
		client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return miniostore.NewStore(client, loc.Bucket, loc.Prefix), nil
	default:
		return blobstore.NewLocalStore(loc.Dir), nil
	}
}
