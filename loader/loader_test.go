package loader

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestStatic(t *testing.T) {
	load := Static("R1")
	v, err := load(context.Background())
	if err != nil || v != "R1" {
		t.Fatalf("Static = %q, %v", v, err)
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.bin")
	if err := os.WriteFile(path, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := File(path)(context.Background())
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("File = %q", data)
	}

	if _, err := File(filepath.Join(t.TempDir(), "missing"))(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		io.WriteString(w, "fetched")
	}))
	defer srv.Close()

	data, err := HTTP(srv.Client(), srv.URL+"/blob")(context.Background())
	if err != nil {
		t.Fatalf("HTTP: %v", err)
	}
	if string(data) != "fetched" {
		t.Fatalf("HTTP = %q", data)
	}

	_, err = HTTP(srv.Client(), srv.URL+"/boom")(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unexpected status") {
		t.Fatalf("expected status error, got %v", err)
	}
}

type fakeS3 struct {
	body []byte
	err  error
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if *params.Bucket != "assets" || *params.Key != "bg.png" {
		t := *params.Bucket + "/" + *params.Key
		return nil, &notFoundError{what: t}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.body))}, nil
}

type notFoundError struct{ what string }

func (e *notFoundError) Error() string { return "no such object: " + e.what }

func TestS3(t *testing.T) {
	client := &fakeS3{body: []byte("object-bytes")}

	data, err := S3(client, "assets", "bg.png")(context.Background())
	if err != nil {
		t.Fatalf("S3: %v", err)
	}
	if string(data) != "object-bytes" {
		t.Fatalf("S3 = %q", data)
	}

	if _, err := S3(client, "assets", "missing")(context.Background()); err == nil {
		t.Fatal("expected error for missing object")
	}
}

func TestImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "bg.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	decoded, err := Image(path)(context.Background())
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if got := decoded.Bounds(); got.Dx() != 4 || got.Dy() != 4 {
		t.Fatalf("bounds = %v", got)
	}

	bad := filepath.Join(t.TempDir(), "not-an-image.png")
	if err := os.WriteFile(bad, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Image(bad)(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}
