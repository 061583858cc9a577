package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var rateLimitedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cogitia_rate_limited",
	Help: "Number of requests rejected by the rate limiter",
}, []string{"backend"})

var rateLimitErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "cogitia_rate_limit_errors",
	Help: "Number of rate limit checks which failed open because of a backend error",
})
