package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var analyzeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cogitia_analyze_requests",
	Help: "Number of analyze API requests, by HTTP status code",
}, []string{"status"})

var adminRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cogitia_admin_requests",
	Help: "Number of guild configuration and moderator API requests, by endpoint",
}, []string{"endpoint"})
