package storage

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Mirror uploads written outputs to an S3-compatible bucket.
type Mirror struct {
	client     *minio.Client
	bucketName string
	prefix     string
}

// NewMirror connects to the MinIO/S3 endpoint and creates the bucket if it
// does not exist.
func NewMirror(ctx context.Context, endpoint, accessKey, secretKey, bucketName, prefix string, useSSL bool) (*Mirror, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Mirror{
		client:     client,
		bucketName: bucketName,
		prefix:     prefix,
	}, nil
}

// ObjectName returns the key an output file is stored under: the cleaned
// slash form of its path below prefix, without a volume, leading slash or
// parent-directory segments. Outputs that share a base name in different
// directories keep distinct keys.
func ObjectName(prefix, localPath string) string {
	p := strings.TrimPrefix(localPath, filepath.VolumeName(localPath))
	p = strings.TrimLeft(path.Clean(filepath.ToSlash(p)), "/")
	for p == ".." || strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(strings.TrimPrefix(p, ".."), "/")
	}
	if p == "" || p == "." {
		p = filepath.Base(localPath)
	}
	return path.Join(prefix, p)
}

// Upload copies the local file to the bucket and returns its object name.
func (m *Mirror) Upload(ctx context.Context, localPath string) (string, error) {
	name := ObjectName(m.prefix, localPath)
	ct := mime.TypeByExtension(filepath.Ext(localPath))
	if ct == "" {
		ct = "application/octet-stream"
	}
	if _, err := m.client.FPutObject(ctx, m.bucketName, name, localPath, minio.PutObjectOptions{
		ContentType: ct,
	}); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", localPath, err)
	}
	return name, nil
}
