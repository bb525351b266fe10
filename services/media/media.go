// Package media turns inlined base64 uploads into files under the public directory.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sahilchouksey/campus-events/utils/logger"
	"github.com/sahilchouksey/campus-events/utils/metrics"
	"github.com/sahilchouksey/campus-events/utils/pdfvalidation"
)

var (
	ErrMalformedDataURI = errors.New("malformed data uri")
	ErrInvalidName      = errors.New("invalid file name")
)

// Kind is the uploads subdirectory a file is written to
type Kind string

const (
	KindImage  Kind = "images"
	KindReport Kind = "reports"
)

// UploadsDir is the directory under the public dir holding every upload
const UploadsDir = "uploads"

// Upload is a file inlined in a JSON body
type Upload struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required"`
}

// Saved describes a written upload
type Saved struct {
	Name      string
	Path      string // relative to the public dir, slash separated
	MIME      string
	Size      int
	PageCount int

	data   []byte
	staged string // temp file next to Path until Commit
}

// Mirror receives a copy of every committed file
type Mirror interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Store writes uploads below the public directory
type Store struct {
	publicDir string
	mirror    Mirror
}

// NewStore creates a store rooted at publicDir. mirror may be nil.
func NewStore(publicDir string, mirror Mirror) *Store {
	return &Store{publicDir: publicDir, mirror: mirror}
}

// PublicDir returns the root the store writes into
func (s *Store) PublicDir() string { return s.publicDir }

// Abs resolves a stored relative path to a filesystem path
func (s *Store) Abs(rel string) string {
	return filepath.Join(s.publicDir, filepath.FromSlash(rel))
}

// DecodeDataURI returns the bytes after the first comma of a base64 data URI
func DecodeDataURI(uri string) ([]byte, error) {
	_, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing comma separator", ErrMalformedDataURI)
	}

	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// unpadded payloads are common from browser encoders
		if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr == nil {
			return raw, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataURI, err)
	}
	return data, nil
}

// BaseName reduces a client supplied name to a single path element
func BaseName(name string) (string, error) {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	switch name {
	case "", ".", "..", "/":
		return "", ErrInvalidName
	}
	return name, nil
}

// Begin starts a batch of writes belonging to one request
func (s *Store) Begin(ctx context.Context) *Batch {
	return &Batch{store: s, ctx: ctx}
}

// Batch stages the files of one request next to their final paths.
// Commit moves them into place and mirrors them; Rollback discards them,
// leaving files of earlier requests with the same name untouched.
type Batch struct {
	store *Store
	ctx   context.Context

	mu    sync.Mutex
	saved []*Saved
	done  bool
}

// Save decodes up and stages it for uploads/<kind>/<base name>
func (b *Batch) Save(kind Kind, up Upload) (*Saved, error) {
	name, err := BaseName(up.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, up.Name)
	}

	data, err := DecodeDataURI(up.URL)
	if err != nil {
		return nil, err
	}

	rel := path.Join(UploadsDir, string(kind), name)
	abs := b.store.Abs(rel)

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	staged, err := stage(abs, data)
	if err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", rel, err)
	}

	saved := &Saved{
		Name: name,
		Path: rel,
		MIME: mimetype.Detect(data).String(),
		Size:   len(data),
		data:   data,
		staged: staged,
	}

	log := logger.Ctx(b.ctx)
	if kind == KindReport {
		info, err := pdfvalidation.Inspect(data)
		if err != nil {
			log.Warn().Err(err).Str("file", rel).Msg("could not read report page count")
		}
		saved.PageCount = info.PageCount
	}

	metrics.MediaFilesWritten.WithLabelValues(string(kind)).Inc()
	metrics.MediaBytesWritten.WithLabelValues(string(kind)).Add(float64(len(data)))

	log.Debug().
		Str("file", rel).
		Str("mime", saved.MIME).
		Int("bytes", saved.Size).
		Msg("upload staged")

	b.mu.Lock()
	b.saved = append(b.saved, saved)
	b.mu.Unlock()

	return saved, nil
}

// stage writes data to a temp file in the directory of abs
func stage(abs string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(abs), ".staged-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// Saved returns the files staged so far
func (b *Batch) Saved() []*Saved {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Saved(nil), b.saved...)
}

// Rollback discards every staged file
func (b *Batch) Rollback() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return
	}
	b.done = true

	for _, f := range b.saved {
		if err := os.Remove(f.staged); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Ctx(b.ctx).Warn().Err(err).Str("file", f.Path).Msg("failed to discard staged upload")
		}
		f.data = nil
	}
}

// Commit moves staged files to their final paths, in save order, and mirrors
// them to object storage. Failures are logged only.
func (b *Batch) Commit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return
	}
	b.done = true

	log := logger.Ctx(b.ctx)
	for _, f := range b.saved {
		if err := os.Rename(f.staged, b.store.Abs(f.Path)); err != nil {
			log.Error().Err(err).Str("file", f.Path).Msg("failed to publish upload")
			os.Remove(f.staged)
			f.data = nil
			continue
		}

		if b.store.mirror != nil {
			if _, err := b.store.mirror.Upload(b.ctx, f.Path, f.data, f.MIME); err != nil {
				metrics.MirrorFailures.Inc()
				log.Warn().Err(err).Str("file", f.Path).Msg("mirror upload failed")
			}
		}
		f.data = nil
	}
}
