package websocket

import "github.com/prometheus/client_golang/prometheus"

// Metrics метрики hub. Нулевой *Metrics допустим и ничего не считает.
type Metrics struct {
	connections    prometheus.Gauge
	framesReceived *prometheus.CounterVec
	framesRejected *prometheus.CounterVec
	broadcasts     prometheus.Counter
	deliveries     *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer, activeRooms func() int) *Metrics {
	m := &Metrics{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "groupchat",
			Subsystem: "ws",
			Name:      "open_connections",
			Help:      "Number of open websocket connections.",
		}),
		framesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "groupchat",
			Subsystem: "ws",
			Name:      "frames_received_total",
			Help:      "Accepted client frames by type.",
		}, []string{"type"}),
		framesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "groupchat",
			Subsystem: "ws",
			Name:      "frames_rejected_total",
			Help:      "Ignored client frames by reason.",
		}, []string{"reason"}),
		broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "groupchat",
			Subsystem: "ws",
			Name:      "broadcasts_total",
			Help:      "Broadcasts to non-empty rooms.",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "groupchat",
			Subsystem: "ws",
			Name:      "deliveries_total",
			Help:      "Per-connection delivery attempts by result.",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.connections,
			m.framesReceived,
			m.framesRejected,
			m.broadcasts,
			m.deliveries,
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: "groupchat",
				Subsystem: "ws",
				Name:      "active_rooms",
				Help:      "Rooms with at least one subscribed connection.",
			}, func() float64 { return float64(activeRooms()) }),
		)
	}

	return m
}

func (m *Metrics) connOpened() {
	if m != nil {
		m.connections.Inc()
	}
}

func (m *Metrics) connClosed() {
	if m != nil {
		m.connections.Dec()
	}
}

func (m *Metrics) frameReceived(t FrameType) {
	if m != nil {
		m.framesReceived.WithLabelValues(string(t)).Inc()
	}
}

func (m *Metrics) frameRejected(reason string) {
	if m != nil {
		m.framesRejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) broadcast() {
	if m != nil {
		m.broadcasts.Inc()
	}
}

func (m *Metrics) delivery(result string) {
	if m != nil {
		m.deliveries.WithLabelValues(result).Inc()
	}
}
