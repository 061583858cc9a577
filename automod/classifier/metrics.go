package classifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var classifierAPIDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "cogitia_classifier_api_duration_sec",
	Help:    "Duration of toxicity classifier API calls, by backend",
	Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
}, []string{"backend"})

var classifierAPICount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cogitia_classifier_api_count",
	Help: "Number of toxicity classifier API calls, by backend and HTTP status code",
}, []string{"backend", "status"})
