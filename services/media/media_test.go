package media

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func TestDecodeDataURI(t *testing.T) {
	got, err := DecodeDataURI(dataURI("text/plain", []byte("hello")))
	if err != nil {
		t.Fatalf("DecodeDataURI: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("expected hello, got %q", got)
	}

	// unpadded
	got, err = DecodeDataURI("data:text/plain;base64,aGVsbG8")
	if err != nil || string(got) != "hello" {
		t.Errorf("expected unpadded payload to decode, got %q %v", got, err)
	}
}

func TestDecodeDataURIMalformed(t *testing.T) {
	for _, in := range []string{"no-comma-here", "data:image/png;base64,@@@not base64@@@"} {
		if _, err := DecodeDataURI(in); !errors.Is(err, ErrMalformedDataURI) {
			t.Errorf("DecodeDataURI(%q): expected ErrMalformedDataURI, got %v", in, err)
		}
	}
}

func TestBaseName(t *testing.T) {
	cases := map[string]string{
		"photo.png":           "photo.png",
		"../../etc/passwd":    "passwd",
		`C:\Users\me\pic.jpg`: "pic.jpg",
	}
	for in, want := range cases {
		got, err := BaseName(in)
		if err != nil || got != want {
			t.Errorf("BaseName(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "..", "/"} {
		if _, err := BaseName(bad); !errors.Is(err, ErrInvalidName) {
			t.Errorf("BaseName(%q): expected ErrInvalidName, got %v", bad, err)
		}
	}
}

type recordingMirror struct {
	keys  []string
	types []string
	err   error
}

func (m *recordingMirror) Upload(_ context.Context, key string, _ []byte, contentType string) (string, error) {
	m.keys = append(m.keys, key)
	m.types = append(m.types, contentType)
	return "https://cdn/" + key, m.err
}

func TestBatchSaveAndCommit(t *testing.T) {
	dir := t.TempDir()
	mirror := &recordingMirror{}
	store := NewStore(dir, mirror)

	png := []byte("\x89PNG\r\n\x1a\n0000")
	batch := store.Begin(context.Background())
	saved, err := batch.Save(KindImage, Upload{Name: "../cover.png", URL: dataURI("image/png", png)})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if saved.Path != "uploads/images/cover.png" {
		t.Errorf("unexpected relative path %s", saved.Path)
	}
	if saved.MIME != "image/png" {
		t.Errorf("expected image/png, got %s", saved.MIME)
	}
	final := filepath.Join(dir, "uploads", "images", "cover.png")
	if _, err := os.Stat(final); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("file published before commit: %v", err)
	}

	batch.Commit()
	content, err := os.ReadFile(final)
	if err != nil || string(content) != string(png) {
		t.Fatalf("file not written: %v", err)
	}
	info, err := os.Stat(final)
	if err != nil || info.Mode().Perm() != 0o644 {
		t.Errorf("expected mode 0644, got %v %v", info.Mode().Perm(), err)
	}
	if len(mirror.keys) != 1 || mirror.keys[0] != "uploads/images/cover.png" || mirror.types[0] != "image/png" {
		t.Errorf("unexpected mirror calls %v %v", mirror.keys, mirror.types)
	}

	// rollback after commit is a no-op
	batch.Rollback()
	if _, err := os.Stat(store.Abs(saved.Path)); err != nil {
		t.Errorf("committed file removed: %v", err)
	}
}

func TestBatchCommitIgnoresMirrorFailure(t *testing.T) {
	store := NewStore(t.TempDir(), &recordingMirror{err: errors.New("offline")})
	batch := store.Begin(context.Background())
	saved, err := batch.Save(KindReport, Upload{Name: "report.txt", URL: dataURI("text/plain", []byte("notes"))})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.PageCount != 0 {
		t.Errorf("expected no page count for a non-pdf report, got %d", saved.PageCount)
	}
	batch.Commit()

	if _, err := os.Stat(store.Abs(saved.Path)); err != nil {
		t.Errorf("file should survive mirror failure: %v", err)
	}
}

func TestBatchRollbackRemovesFiles(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	batch := store.Begin(context.Background())

	a, err := batch.Save(KindImage, Upload{Name: "a.jpg", URL: dataURI("image/jpeg", []byte("a"))})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := batch.Save(KindImage, Upload{Name: "b.jpg", URL: "broken"}); !errors.Is(err, ErrMalformedDataURI) {
		t.Fatalf("expected ErrMalformedDataURI, got %v", err)
	}
	if len(batch.Saved()) != 1 {
		t.Fatalf("expected one saved file, got %d", len(batch.Saved()))
	}

	batch.Rollback()
	if _, err := os.Stat(store.Abs(a.Path)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected no file after rollback, stat err = %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(store.Abs(a.Path)))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected staged files discarded, found %d entries", len(entries))
	}
}

func TestBatchRollbackKeepsCommittedFileWithSameName(t *testing.T) {
	store := NewStore(t.TempDir(), nil)

	first := store.Begin(context.Background())
	saved, err := first.Save(KindImage, Upload{Name: "photo.jpg", URL: dataURI("image/jpeg", []byte("original"))})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	first.Commit()

	second := store.Begin(context.Background())
	if _, err := second.Save(KindImage, Upload{Name: "photo.jpg", URL: dataURI("image/jpeg", []byte("replacement"))}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second.Rollback()

	content, err := os.ReadFile(store.Abs(saved.Path))
	if err != nil {
		t.Fatalf("committed file lost on rollback: %v", err)
	}
	if string(content) != "original" {
		t.Errorf("expected original content, got %q", content)
	}
}

func TestBatchCommitLastSaveWins(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	batch := store.Begin(context.Background())

	for _, body := range []string{"one", "two"} {
		if _, err := batch.Save(KindImage, Upload{Name: "same.jpg", URL: dataURI("image/jpeg", []byte(body))}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	batch.Commit()

	content, err := os.ReadFile(store.Abs("uploads/images/same.jpg"))
	if err != nil || string(content) != "two" {
		t.Errorf("expected last write to win, got %q %v", content, err)
	}
}
