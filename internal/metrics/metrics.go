package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics counts order outcomes and stock rejections for the
// /metrics endpoint.
type OrderMetrics struct {
	ordersCreated   prometheus.Counter
	orderFailures   *prometheus.CounterVec
	stockRejections prometheus.Counter
	orderDuration   prometheus.Histogram
}

func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &OrderMetrics{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fruitshop_orders_created_total",
			Help: "Total number of orders created successfully",
		}),
		orderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fruitshop_order_failures_total",
			Help: "Total number of rejected order submissions by reason",
		}, []string{"reason"}),
		stockRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fruitshop_stock_rejections_total",
			Help: "Total number of stock decrements rejected for insufficient stock",
		}),
		orderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fruitshop_order_create_duration_seconds",
			Help:    "Duration of order creation in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{
		m.ordersCreated, m.orderFailures, m.stockRejections, m.orderDuration,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}

	return m
}

func (m *OrderMetrics) OrderCreated(seconds float64) {
	m.ordersCreated.Inc()
	m.orderDuration.Observe(seconds)
}

func (m *OrderMetrics) OrderFailed(reason string) {
	m.orderFailures.WithLabelValues(reason).Inc()
}

func (m *OrderMetrics) StockRejected() {
	m.stockRejections.Inc()
}
