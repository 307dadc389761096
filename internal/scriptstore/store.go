// Package scriptstore resolves a submit-script reference to its contents.
// Plain references are local paths; s3://bucket/key references fetch the
// object from S3-compatible storage, where production batch scripts commonly
// live next to their input data.
package scriptstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mtelvers/go-slurm/internal/config"
)

const objectScheme = "s3://"

type Store struct {
	s3 config.S3
}

func New(s3 config.S3) *Store {
	return &Store{s3: s3}
}

// Resolve reads the script named by ref.
func (s *Store) Resolve(ctx context.Context, ref string) (string, error) {
	if strings.HasPrefix(ref, objectScheme) {
		return s.fetchObject(ctx, ref)
	}
	b, err := os.ReadFile(ref)
	if err != nil {
		return "", fmt.Errorf("read script %s: %w", ref, err)
	}
	return string(b), nil
}

func (s *Store) fetchObject(ctx context.Context, ref string) (string, error) {
	bucket, key, err := parseObjectRef(ref)
	if err != nil {
		return "", err
	}
	if s.s3.Endpoint == "" {
		return "", fmt.Errorf("object reference %s requires an s3 endpoint in the configuration", ref)
	}
	client, err := minio.New(s.s3.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s.s3.AccessKey, s.s3.SecretKey, ""),
		Secure: s.s3.UseSSL,
	})
	if err != nil {
		return "", fmt.Errorf("s3 client: %w", err)
	}
	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer obj.Close()
	b, err := io.ReadAll(obj)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", ref, err)
	}
	return string(b), nil
}

func parseObjectRef(ref string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(ref, objectScheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("object reference must look like s3://bucket/key, got %s", ref)
	}
	return bucket, key, nil
}
