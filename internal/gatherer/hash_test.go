package gatherer

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHashKnownDigests(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "d41d8cd98f00b204e9800998ecf8427e"},
		{"hello world", "5eb63bbbe01eeed093cb22bb8f5acdc3"},
		{"The quick brown fox jumps over the lazy dog", "9e107d9d372bb6826bd81d3542a419d6"},
	}
	for _, tt := range tests {
		got, err := Hash(strings.NewReader(tt.in))
		if err != nil {
			t.Fatalf("Hash(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Hash(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

// recordingReader tracks the largest read it was asked to serve.
type recordingReader struct {
	r       io.Reader
	maxRead int
}

func (rr *recordingReader) Read(p []byte) (int, error) {
	if len(p) > rr.maxRead {
		rr.maxRead = len(p)
	}
	return rr.r.Read(p)
}

func TestHashStreamsInChunks(t *testing.T) {
	content := bytes.Repeat([]byte("0123456789abcdef"), 10_000) // spans many chunks
	rr := &recordingReader{r: bytes.NewReader(content)}

	got, err := Hash(rr)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	sum := md5.Sum(content)
	if want := hex.EncodeToString(sum[:]); got != want {
		t.Errorf("Hash() = %s, want %s", got, want)
	}
	if rr.maxRead != hashChunkSize {
		t.Errorf("read size = %d, want %d", rr.maxRead, hashChunkSize)
	}
	if hashChunkSize != 8192 {
		t.Errorf("hashChunkSize = %d, want 8192", hashChunkSize)
	}
}

func TestHashDistinguishesContent(t *testing.T) {
	a, _ := Hash(strings.NewReader("version one"))
	b, _ := Hash(strings.NewReader("version two"))
	again, _ := Hash(strings.NewReader("version one"))
	if a == b {
		t.Errorf("different content produced equal digests %s", a)
	}
	if a != again {
		t.Errorf("same content produced %s and %s", a, again)
	}
	if len(a) != 32 {
		t.Errorf("digest length = %d, want 32", len(a))
	}
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("device gone") }

func TestHashReadError(t *testing.T) {
	if _, err := Hash(brokenReader{}); err == nil {
		t.Fatal("expected error from failing reader")
	}
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(p, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := HashFile(p)
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}
	if got != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
		t.Errorf("HashFile() = %s", got)
	}
	if _, err := HashFile(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
