package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LikesToggledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediashare_likes_toggled_total",
		Help: "Like toggles, by resource and resulting state.",
	}, []string{"resource", "state"})

	ViewsRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediashare_views_recorded_total",
		Help: "View submissions, split into newly counted and duplicate viewers.",
	}, []string{"result"})

	AuthFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediashare_auth_failures_total",
		Help: "Rejected credentials, by reason.",
	}, []string{"reason"})

	AuthzDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediashare_authz_denied_total",
		Help: "Mutations refused by the ownership check.",
	}, []string{"resource", "action"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mediashare_http_request_duration_seconds",
		Help:    "API request latency by route pattern and status class.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"route", "status"})

	PostsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mediashare_posts_total",
		Help: "Total number of posts in the database.",
	})

	UsersTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mediashare_users_total",
		Help: "Total number of registered users in the database.",
	})
)
