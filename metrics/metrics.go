package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "syncparty_rooms_active",
		Help: "Number of rooms currently in the registry.",
	})

	ClientsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "syncparty_clients_connected",
		Help: "Number of open websocket connections.",
	})

	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "syncparty_messages_total",
		Help: "Inbound messages dispatched, by message type.",
	}, []string{"type"})

	BroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "syncparty_broadcasts_total",
		Help: "Video events delivered to room members.",
	})

	SendFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "syncparty_send_failures_total",
		Help: "Outbound sends that failed or were dropped.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
