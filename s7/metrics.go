package s7

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a per-Client Prometheus collector tracking request volume,
// bytes transferred, and transport errors. It implements
// prometheus.Collector directly so callers can register a Client's
// metrics without wrapping it in a registry-specific adapter.
type Metrics struct {
	mu sync.Mutex

	requestsTotal   float64
	errorsTotal     float64
	bytesSentTotal  float64
	bytesRecvTotal  float64

	requestsDesc *prometheus.Desc
	errorsDesc   *prometheus.Desc
	sentDesc     *prometheus.Desc
	recvDesc     *prometheus.Desc
}

func newMetrics() *Metrics {
	return &Metrics{
		requestsDesc: prometheus.NewDesc("s7_requests_total", "Total S7 telegrams sent.", nil, nil),
		errorsDesc:   prometheus.NewDesc("s7_request_errors_total", "Total S7 telegrams that returned a transport error.", nil, nil),
		sentDesc:     prometheus.NewDesc("s7_bytes_sent_total", "Total bytes written to the PLC connection.", nil, nil),
		recvDesc:     prometheus.NewDesc("s7_bytes_received_total", "Total bytes read from the PLC connection.", nil, nil),
	}
}

func (m *Metrics) recordSend(reqLen, respLen int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestsTotal++
	m.bytesSentTotal += float64(reqLen)
	m.bytesRecvTotal += float64(respLen)
	if err != nil {
		m.errorsTotal++
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.requestsDesc
	ch <- m.errorsDesc
	ch <- m.sentDesc
	ch <- m.recvDesc
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch <- prometheus.MustNewConstMetric(m.requestsDesc, prometheus.CounterValue, m.requestsTotal)
	ch <- prometheus.MustNewConstMetric(m.errorsDesc, prometheus.CounterValue, m.errorsTotal)
	ch <- prometheus.MustNewConstMetric(m.sentDesc, prometheus.CounterValue, m.bytesSentTotal)
	ch <- prometheus.MustNewConstMetric(m.recvDesc, prometheus.CounterValue, m.bytesRecvTotal)
}
