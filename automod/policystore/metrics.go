package policystore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var policyCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "cogitia_policy_cache_hits",
	Help: "Number of guild policy reads served from cache",
})

var policyCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "cogitia_policy_cache_misses",
	Help: "Number of guild policy reads which went to the backing store",
})
