// Package archive bundles the images of an event into a zip under the public dir.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/sahilchouksey/campus-events/model"
	"github.com/sahilchouksey/campus-events/services"
	"github.com/sahilchouksey/campus-events/services/media"
	"github.com/sahilchouksey/campus-events/utils/logger"
	"github.com/sahilchouksey/campus-events/utils/metrics"
)

// Dir is where archives live, relative to the public dir
var Dir = path.Join(media.UploadsDir, string(media.KindImage), "archives")

// TimestampLayout formats the event start date in archive names
const TimestampLayout = "20060102T150405"

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// EventLoader loads an event with its active images
type EventLoader interface {
	Get(ctx context.Context, id uint) (*model.Event, error)
}

// Result is what a successful build returns to clients
type Result struct {
	ZipName string `json:"zipName"`
	URL     string `json:"url"`
}

// Builder writes image archives
type Builder struct {
	events    EventLoader
	publicDir string
	baseURL   string
}

// NewBuilder creates an archive builder
func NewBuilder(events EventLoader, publicDir, baseURL string) *Builder {
	return &Builder{
		events:    events,
		publicDir: publicDir,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// PurifyName replaces every character outside [a-zA-Z0-9] with an underscore
func PurifyName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// FileName is the archive name of an event
func FileName(event *model.Event) string {
	return fmt.Sprintf("%s_%s.zip", PurifyName(event.Name), event.StartDate.UTC().Format(TimestampLayout))
}

func (b *Builder) dir() string {
	return filepath.Join(b.publicDir, filepath.FromSlash(Dir))
}

// Build zips the active images of an event at maximum compression.
// No file is written when the event has no images.
func (b *Builder) Build(ctx context.Context, eventID uint) (*Result, error) {
	event, err := b.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	images := activeImages(event.Images)
	if len(images) == 0 {
		return nil, &services.EventError{Err: services.ErrNoImages, EventName: event.Name}
	}

	if err := os.MkdirAll(b.dir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive dir: %w", err)
	}

	zipName := FileName(event)
	tmp, err := os.CreateTemp(b.dir(), ".build-*.zip")
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	defer os.Remove(tmp.Name())

	// CreateTemp uses 0600; archives are served like uploads
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	if err := b.write(ctx, tmp, images); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(b.dir(), zipName)); err != nil {
		return nil, fmt.Errorf("failed to publish archive: %w", err)
	}

	metrics.ArchivesBuilt.Inc()
	logger.Ctx(ctx).Info().Uint("event_id", eventID).Str("zip", zipName).Int("images", len(images)).Msg("archive built")

	rel := path.Join(Dir, zipName)
	return &Result{
		ZipName: zipName,
		URL:     fmt.Sprintf("%s/%s", b.baseURL, rel),
	}, nil
}

// activeImages drops soft deleted images
func activeImages(images []model.EventImage) []model.EventImage {
	active := make([]model.EventImage, 0, len(images))
	for _, img := range images {
		if img.IsActive {
			active = append(active, img)
		}
	}
	return active
}

func (b *Builder) write(ctx context.Context, w io.Writer, images []model.EventImage) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	log := logger.Ctx(ctx)
	seen := make(map[string]bool, len(images))
	for _, image := range images {
		if err := ctx.Err(); err != nil {
			return err
		}
		if seen[image.Name] {
			continue
		}

		data, err := os.ReadFile(filepath.Join(b.publicDir, filepath.FromSlash(image.URL)))
		if err != nil {
			log.Warn().Err(err).Str("image", image.URL).Msg("skipping unreadable image")
			continue
		}

		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:     image.Name,
			Method:   zip.Deflate,
			Modified: image.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", image.Name, err)
		}
		if _, err := entry.Write(data); err != nil {
			return fmt.Errorf("failed to write %s: %w", image.Name, err)
		}
		seen[image.Name] = true
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive: %w", err)
	}
	return nil
}

// Remove deletes an archive by file name
func (b *Builder) Remove(name string) error {
	base, err := media.BaseName(name)
	if err != nil || !strings.HasSuffix(base, ".zip") {
		return services.ErrArchiveNotFound
	}

	if err := os.Remove(filepath.Join(b.dir(), base)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.ErrArchiveNotFound
		}
		return fmt.Errorf("failed to remove archive: %w", err)
	}
	return nil
}

// PruneOlderThan removes archives last modified more than age ago
func (b *Builder) PruneOlderThan(ctx context.Context, age time.Duration) (int, error) {
	entries, err := os.ReadDir(b.dir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read archive dir: %w", err)
	}

	cutoff := time.Now().Add(-age)
	removed := 0
	for _, entry := range entries {
		// skip directories, foreign files and in-flight builds
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".zip" || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(b.dir(), entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Ctx(ctx).Warn().Err(err).Str("zip", entry.Name()).Msg("failed to prune archive")
			continue
		}
		removed++
	}
	return removed, nil
}
