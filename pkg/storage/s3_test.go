package storage_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/vozaid/vozaid/pkg/storage"
)

// fakeS3 is an in-memory S3Client covering the operations S3Store uses.
type fakeS3 struct {
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

// apiError mimics the service error shape the SDK returns.
type apiError struct{ code string }

func (e *apiError) Error() string                 { return e.code }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.code }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*params.Key]
	if !ok {
		return nil, &apiError{code: "NoSuchKey"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*params.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[*params.Key]; !ok {
		return nil, &apiError{code: "NotFound"}
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestS3ReadWrite(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := storage.NewS3(fake, "bucket", "vozaid")

	if err := store.WriteFile(ctx, "snap.json", []byte("payload")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, ok := fake.objects["vozaid/snap.json"]; !ok {
		t.Fatal("object not stored under prefixed key")
	}

	data, err := store.ReadFile(ctx, "snap.json")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("ReadFile = %q, want %q", data, "payload")
	}
}

func TestS3NoPrefix(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := storage.NewS3(fake, "bucket", "")

	if err := store.WriteFile(ctx, "snap.json", []byte("x")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, ok := fake.objects["snap.json"]; !ok {
		t.Fatal("object key unexpectedly prefixed")
	}
}

func TestS3ReadMissing(t *testing.T) {
	store := storage.NewS3(newFakeS3(), "bucket", "")

	_, err := store.ReadFile(context.Background(), "nope")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("ReadFile(missing) = %v, want wrapped fs.ErrNotExist", err)
	}
}

func TestS3Exists(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := storage.NewS3(fake, "bucket", "p")

	ok, err := store.Exists(ctx, "f")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Fatal("Exists = true for missing object")
	}

	if err := store.WriteFile(ctx, "f", []byte("x")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	ok, err = store.Exists(ctx, "f")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Fatal("Exists = false after WriteFile")
	}
}

func TestS3Delete(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := storage.NewS3(fake, "bucket", "")

	if err := store.WriteFile(ctx, "f", []byte("x")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := store.Delete(ctx, "f"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := fake.objects["f"]; ok {
		t.Fatal("object survived Delete")
	}

	// Idempotent on missing keys.
	if err := store.Delete(ctx, "f"); err != nil {
		t.Fatalf("Delete(missing) = %v, want nil", err)
	}
}
