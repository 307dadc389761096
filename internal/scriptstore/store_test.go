package scriptstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mtelvers/go-slurm/internal/config"
)

func TestResolveLocalPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nsleep 1\n"), 0o700); err != nil {
		t.Fatalf("write script: %v", err)
	}
	body, err := New(config.S3{}).Resolve(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "#!/bin/sh\nsleep 1\n" {
		t.Fatalf("body = %q", body)
	}
}

func TestResolveMissingLocalPath(t *testing.T) {
	_, err := New(config.S3{}).Resolve(context.Background(), filepath.Join(t.TempDir(), "nope.sh"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestResolveObjectRefRequiresEndpoint(t *testing.T) {
	_, err := New(config.S3{}).Resolve(context.Background(), "s3://scripts/job.sh")
	if err == nil || !strings.Contains(err.Error(), "endpoint") {
		t.Fatalf("got %v, want endpoint configuration error", err)
	}
}

func TestParseObjectRef(t *testing.T) {
	bucket, key, err := parseObjectRef("s3://scripts/team/job.sh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bucket != "scripts" || key != "team/job.sh" {
		t.Fatalf("parsed %q / %q", bucket, key)
	}
	for _, bad := range []string{"s3://", "s3://bucketonly", "s3://bucket/"} {
		if _, _, err := parseObjectRef(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
