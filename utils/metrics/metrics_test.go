package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHandlerExposesCounters(t *testing.T) {
	ArchivesBuilt.Inc()
	MediaFilesWritten.WithLabelValues("image").Inc()

	app := fiber.New()
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)

	for _, name := range []string{
		"campus_events_archives_built_total",
		`campus_events_media_files_written_total{kind="image"}`,
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("expected %s in metrics output", name)
		}
	}
}
