package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	gcs "cloud.google.com/go/storage"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
)

func TestSanitizeKey(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "templates/1/a.svg", want: "templates/1/a.svg"},
		{in: "/uploads//x.png", want: "uploads/x.png"},
		{in: `uploads\win\x.png`, want: "uploads/win/x.png"},
		{in: "./a/../b.png", want: "b.png"},
		{in: "../etc/passwd", wantErr: true},
		{in: "..", wantErr: true},
		{in: "  ", wantErr: true},
	}
	for _, tc := range cases {
		got, err := sanitizeKey(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("sanitizeKey(%q) = %q, want error", tc.in, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("sanitizeKey(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://localhost:8080/storage/")
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	ctx := context.Background()
	key, err := store.Write(ctx, "/templates/7/out.svg", []byte("<svg/>"))
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if key != "templates/7/out.svg" {
		t.Fatalf("key = %q", key)
	}
	data, err := store.Read(ctx, key)
	if err != nil || string(data) != "<svg/>" {
		t.Fatalf("Read() = %q, %v", data, err)
	}
	if got := store.URL(key); got != "http://localhost:8080/storage/templates/7/out.svg" {
		t.Fatalf("URL() = %q", got)
	}
	if _, err := store.Read(ctx, "templates/7/missing.svg"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Read(missing) err = %v, want ErrNotFound", err)
	}
	if _, err := store.Write(ctx, "../escape", nil); err == nil {
		t.Fatal("Write should reject traversal")
	}
}

func TestFileStoreCanceled(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Write(ctx, "a.png", []byte{1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if got := store.URL("a.png"); got != "/a.png" {
		t.Fatalf("URL() = %q, want /a.png", got)
	}
}

func TestKeys(t *testing.T) {
	up := UploadKey("Holiday Tours!", "PNG")
	if !strings.HasPrefix(up, "uploads/holiday-tours/") || !strings.HasSuffix(up, ".png") {
		t.Fatalf("UploadKey() = %q", up)
	}
	if UploadKey("", ".jpg") == UploadKey("", ".jpg") {
		t.Fatal("UploadKey should be unique")
	}
	tk := TemplateKey(12, 0, ".svg")
	if !strings.HasPrefix(tk, "templates/12/") || !strings.HasSuffix(tk, "_v1.svg") {
		t.Fatalf("TemplateKey() = %q", tk)
	}
}

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{"image/jpeg": ".jpg", "IMAGE/WEBP": ".webp", "image/svg+xml": ".svg", "": ".png"}
	for in, want := range cases {
		if got := ExtensionFor(in); got != want {
			t.Fatalf("ExtensionFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGCSStoreURL(t *testing.T) {
	if _, err := NewGCSStore(nil, "bucket", "", ""); err == nil {
		t.Fatal("NewGCSStore(nil) should fail")
	}
	store, err := NewGCSStore(&gcs.Client{}, "print-assets", "/prod/", "")
	if err != nil {
		t.Fatalf("NewGCSStore returned error: %v", err)
	}
	if got := store.URL("/templates/1/a.svg"); got != "https://storage.googleapis.com/print-assets/prod/templates/1/a.svg" {
		t.Fatalf("URL() = %q", got)
	}
}
