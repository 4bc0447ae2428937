package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "lovestory", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "lovestory", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	ContentCommits = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "lovestory", Name: "content_commits_total", Help: "Draft commits by result (ok|failed)."},
		[]string{"result"},
	)
	ContentPropagations = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "lovestory", Name: "content_propagations_total", Help: "Debounced draft propagations fired."},
	)
	ProjectPublishes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "lovestory", Name: "project_publishes_total", Help: "Publish requests by result (ok|failed)."},
		[]string{"result"},
	)
	ImageIngests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "lovestory", Name: "image_ingests_total", Help: "Image ingests by result (inline|uploaded|too_large|rejected|failed)."},
		[]string{"result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(ContentCommits)
	reg.MustRegister(ContentPropagations)
	reg.MustRegister(ProjectPublishes)
	reg.MustRegister(ImageIngests)
}
