package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "wiki_attachments", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "wiki_attachments", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// FilesServed counts raw file requests by outcome: stream, redirect, legacy_redirect, not_found.
	FilesServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "wiki_attachments", Name: "files_served_total", Help: "Number of attachment file requests by outcome."},
		[]string{"outcome"},
	)
	// Uploads counts upload form submissions by result: created, invalid, forbidden, error.
	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "wiki_attachments", Name: "uploads_total", Help: "Number of attachment upload submissions by result."},
		[]string{"result"},
	)
	UploadedBytes = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "wiki_attachments", Name: "uploaded_bytes_total", Help: "Bytes accepted through the upload form."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(FilesServed)
	reg.MustRegister(Uploads)
	reg.MustRegister(UploadedBytes)
}
