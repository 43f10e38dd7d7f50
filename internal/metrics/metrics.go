// Package metrics records Prometheus metrics for a mirror run.
//
// dirmirror is a batch job, so metrics are not served over HTTP. They are
// collected on a private registry and written once at the end of the run in
// the node_exporter textfile format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nao1215/dirmirror/internal/model"
)

// Recorder holds the metrics of one run.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	listingsFetched  prometheus.Counter
	filesDownloaded  prometheus.Counter
	bytesDownloaded  prometheus.Counter
	filesSkipped     *prometheus.CounterVec
	downloadDuration prometheus.Histogram
	lastRunSuccess   prometheus.Gauge
}

// NewRecorder creates a Recorder on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	r := &Recorder{
		registry: reg,
		listingsFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "dirmirror_listings_fetched_total",
			Help: "Total number of directory listing pages fetched",
		}),
		filesDownloaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "dirmirror_files_downloaded_total",
			Help: "Total number of files downloaded",
		}),
		bytesDownloaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "dirmirror_bytes_downloaded_total",
			Help: "Total bytes written to the mirror",
		}),
		filesSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dirmirror_files_skipped_total",
			Help: "Total number of paths skipped without a download",
		}, []string{"reason"}),
		downloadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dirmirror_download_duration_seconds",
			Help:    "Time to download a single file",
			Buckets: prometheus.DefBuckets,
		}),
		lastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dirmirror_last_run_success",
			Help: "1 if the last mirror run completed without error, 0 otherwise",
		}),
	}

	// Pre-create every reason so the textfile always lists them.
	for _, reason := range model.SkipReasons {
		if reason != model.SkipNone {
			r.filesSkipped.WithLabelValues(reason.String())
		}
	}
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ListingFetched counts one listing page.
func (r *Recorder) ListingFetched() {
	if r == nil {
		return
	}
	r.listingsFetched.Inc()
}

// ObserveResult records a download or a skip.
func (r *Recorder) ObserveResult(res model.FileResult) {
	if r == nil {
		return
	}
	if !res.Downloaded() {
		r.filesSkipped.WithLabelValues(res.Skipped.String()).Inc()
		return
	}
	r.filesDownloaded.Inc()
	r.bytesDownloaded.Add(float64(res.Bytes))
	r.downloadDuration.Observe(res.Duration.Seconds())
}

// ObserveRun sets the success gauge from the run's final error.
func (r *Recorder) ObserveRun(err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.lastRunSuccess.Set(0)
		return
	}
	r.lastRunSuccess.Set(1)
}

// WriteTextfile writes all metrics to path in the Prometheus text format,
// replacing the file atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
