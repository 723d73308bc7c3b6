package websocket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "thesishub_ws_connections",
		Help: "Number of open websocket connections.",
	})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thesishub_ws_events_total",
		Help: "Events delivered over websockets, by event name.",
	}, []string{"event"})
)
