package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campusdesk",
		Name:      "turns_total",
		Help:      "Dialogue turns by outcome.",
	}, []string{"outcome"})

	modelLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "campusdesk",
		Name:      "model_request_seconds",
		Help:      "Latency of generative model calls.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	})

	voiceEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campusdesk",
		Name:      "voice_events_total",
		Help:      "Voice webhook events by kind.",
	}, []string{"event"})

	knowledgeGeneration = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "campusdesk",
		Name:      "knowledge_generation",
		Help:      "Generation number of the active knowledge snapshot.",
	})

	sourceFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campusdesk",
		Name:      "source_fetch_total",
		Help:      "Web source fetches by result.",
	}, []string{"result"})
)

// RegisterSessionGauge exposes the live session count of store. Call once.
func RegisterSessionGauge(reg prometheus.Registerer, store *SessionStore) error {
	return reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "campusdesk",
		Name:      "sessions_active",
		Help:      "Conversations currently held in memory.",
	}, func() float64 { return float64(store.Len()) }))
}
