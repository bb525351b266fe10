// Package metrics exposes the Prometheus collectors of the API.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MediaFilesWritten counts files decoded and written to the public dir, by kind
	MediaFilesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_events_media_files_written_total",
			Help: "Uploaded files written to the public directory",
		},
		[]string{"kind"},
	)

	// MediaBytesWritten sums decoded payload sizes, by kind
	MediaBytesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_events_media_bytes_written_total",
			Help: "Bytes of uploaded files written to the public directory",
		},
		[]string{"kind"},
	)

	// MirrorFailures counts object storage uploads that failed and were skipped
	MirrorFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_events_mirror_failures_total",
		Help: "Object storage mirror uploads that failed",
	})

	// ArchivesBuilt counts image archives written
	ArchivesBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_events_archives_built_total",
		Help: "Image zip archives built",
	})

	// LoginFailures counts rejected logins
	LoginFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campus_events_login_failures_total",
		Help: "Login attempts rejected with invalid credentials",
	})

	// CronRuns counts scheduled job runs by job and status
	CronRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_events_cron_runs_total",
			Help: "Scheduled job runs",
		},
		[]string{"job", "status"},
	)
)

// Handler serves the default registry in the Prometheus text format
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
