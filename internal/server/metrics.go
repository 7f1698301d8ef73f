package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments exposed on /metrics.
type Metrics struct {
	RefreshTicks    prometheus.Counter
	Classifications *prometheus.CounterVec
	Viewers         prometheus.GaugeFunc
}

// NewMetrics registers the monitor's metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer, hub *Hub) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RefreshTicks: factory.NewCounter(prometheus.CounterOpts{
			Name: "moss_refresh_ticks_total",
			Help: "Number of completed refresh cycles.",
		}),
		Classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "moss_classifications_total",
			Help: "Classification results by health label.",
		}, []string{"label"}),
		Viewers: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "moss_dashboard_viewers",
			Help: "Currently connected WebSocket viewers.",
		}, func() float64 {
			return float64(hub.ViewerCount())
		}),
	}
}
