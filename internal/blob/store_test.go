package blob

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreUpload(t *testing.T) {
	tests := []struct {
		name     string
		object   string
		data     []byte
		wantKey  string
		wantErr  bool
		wantBody string
	}{
		{
			name:     "plain filename",
			object:   "banana.jpg",
			data:     []byte("jpeg-bytes"),
			wantKey:  "images/banana.jpg",
			wantBody: "jpeg-bytes",
		},
		{
			name:     "path is stripped to base name",
			object:   "../../etc/passwd.png",
			data:     []byte("x"),
			wantKey:  "images/passwd.png",
			wantBody: "x",
		},
		{
			name:    "empty name",
			object:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			s, err := NewStore(dir, "http://localhost:8080")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			key, err := s.Upload(tt.object, tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.object)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if key != tt.wantKey {
				t.Fatalf("expected key %q, got %q", tt.wantKey, key)
			}

			body, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
			if err != nil {
				t.Fatalf("read object: %v", err)
			}
			if string(body) != tt.wantBody {
				t.Fatalf("unexpected object body: %q", body)
			}
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	s, err := NewStore(t.TempDir(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.Upload("banana.jpg", []byte("old")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key, err := s.Upload("banana.jpg", []byte("new"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, err := os.ReadFile(filepath.Join(s.Dir(), filepath.FromSlash(key)))
	if err != nil {
		t.Fatalf("read object: %v", err)
	}
	if string(body) != "new" {
		t.Fatalf("same-named upload must overwrite, got %q", body)
	}
}

func TestStorePublicURL(t *testing.T) {
	s, err := NewStore(t.TempDir(), "http://localhost:8080/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.PublicURL("images/banana.jpg"); got != "http://localhost:8080/images/banana.jpg" {
		t.Fatalf("unexpected url: %q", got)
	}
}
