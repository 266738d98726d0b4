package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Risk loop metrics
	passesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "risk_bot_passes_total",
			Help: "Total number of completed risk monitoring passes",
		},
	)

	stopTriggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_bot_stop_triggers_total",
			Help: "Total number of stop-loss triggers",
		},
		[]string{"symbol", "kind"},
	)

	trackedPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "risk_bot_tracked_positions",
			Help: "Number of positions with an active risk record",
		},
	)

	// Execution metrics
	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_bot_orders_total",
			Help: "Total number of orders submitted",
		},
		[]string{"symbol", "side"},
	)

	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_bot_rejections_total",
			Help: "Total number of decisions rejected by validation",
		},
		[]string{"action"},
	)

	// Market data metrics
	currentPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "risk_bot_current_price",
			Help: "Latest observed price per tracked symbol",
		},
		[]string{"symbol"},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_bot_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(passesTotal)
	prometheus.MustRegister(stopTriggersTotal)
	prometheus.MustRegister(trackedPositions)
	prometheus.MustRegister(ordersTotal)
	prometheus.MustRegister(rejectionsTotal)
	prometheus.MustRegister(currentPrice)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles the Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordPass records a completed monitoring pass
func RecordPass(tracked int) {
	passesTotal.Inc()
	trackedPositions.Set(float64(tracked))
}

// RecordStopTrigger records a stop-loss trigger
func RecordStopTrigger(symbol, kind string) {
	stopTriggersTotal.WithLabelValues(symbol, kind).Inc()
}

// RecordOrder records a submitted order
func RecordOrder(symbol, side string) {
	ordersTotal.WithLabelValues(symbol, side).Inc()
}

// RecordRejection records a rejected decision
func RecordRejection(action string) {
	rejectionsTotal.WithLabelValues(action).Inc()
}

// UpdatePrice updates the latest price metric for a symbol
func UpdatePrice(symbol string, price float64) {
	currentPrice.WithLabelValues(symbol).Set(price)
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
