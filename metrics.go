package kafkaconn

import (
	"fmt"

	"github.com/rcrowley/go-metrics"
)

// Metric names. Each is registered once for all brokers sharing a registry and once
// per broker with a "-for-broker-<host:port>" suffix.
const (
	incomingByteRateMetric   = "incoming-byte-rate"
	outgoingByteRateMetric   = "outgoing-byte-rate"
	requestRateMetric        = "request-rate"
	responseRateMetric       = "response-rate"
	requestSizeMetric        = "request-size"
	responseSizeMetric       = "response-size"
	requestLatencyMetric     = "request-latency-in-ms"
	connectionFailuresMetric = "connection-failures"
)

func getOrRegisterHistogram(name string, r metrics.Registry) metrics.Histogram {
	return r.GetOrRegister(name, func() metrics.Histogram {
		return metrics.NewHistogram(metrics.NewExpDecaySample(1028, 0.015))
	}).(metrics.Histogram)
}

func getMetricNameForBroker(name string, addr string) string {
	return fmt.Sprintf(name+"-for-broker-%s", addr)
}

func getOrRegisterBrokerMeter(name string, addr string, r metrics.Registry) metrics.Meter {
	return metrics.GetOrRegisterMeter(getMetricNameForBroker(name, addr), r)
}

func getOrRegisterBrokerHistogram(name string, addr string, r metrics.Registry) metrics.Histogram {
	return getOrRegisterHistogram(getMetricNameForBroker(name, addr), r)
}

// brokerMetrics holds the registry-wide and per-broker instruments updated by a Broker.
type brokerMetrics struct {
	incomingByteRate   metrics.Meter
	outgoingByteRate   metrics.Meter
	requestRate        metrics.Meter
	responseRate       metrics.Meter
	requestSize        metrics.Histogram
	responseSize       metrics.Histogram
	requestLatency     metrics.Histogram
	connectionFailures metrics.Meter

	brokerIncomingByteRate   metrics.Meter
	brokerOutgoingByteRate   metrics.Meter
	brokerRequestRate        metrics.Meter
	brokerResponseRate       metrics.Meter
	brokerRequestSize        metrics.Histogram
	brokerResponseSize       metrics.Histogram
	brokerRequestLatency     metrics.Histogram
	brokerConnectionFailures metrics.Meter
}

func newBrokerMetrics(addr string, r metrics.Registry) *brokerMetrics {
	return &brokerMetrics{
		incomingByteRate:   metrics.GetOrRegisterMeter(incomingByteRateMetric, r),
		outgoingByteRate:   metrics.GetOrRegisterMeter(outgoingByteRateMetric, r),
		requestRate:        metrics.GetOrRegisterMeter(requestRateMetric, r),
		responseRate:       metrics.GetOrRegisterMeter(responseRateMetric, r),
		requestSize:        getOrRegisterHistogram(requestSizeMetric, r),
		responseSize:       getOrRegisterHistogram(responseSizeMetric, r),
		requestLatency:     getOrRegisterHistogram(requestLatencyMetric, r),
		connectionFailures: metrics.GetOrRegisterMeter(connectionFailuresMetric, r),

		brokerIncomingByteRate:   getOrRegisterBrokerMeter(incomingByteRateMetric, addr, r),
		brokerOutgoingByteRate:   getOrRegisterBrokerMeter(outgoingByteRateMetric, addr, r),
		brokerRequestRate:        getOrRegisterBrokerMeter(requestRateMetric, addr, r),
		brokerResponseRate:       getOrRegisterBrokerMeter(responseRateMetric, addr, r),
		brokerRequestSize:        getOrRegisterBrokerHistogram(requestSizeMetric, addr, r),
		brokerResponseSize:       getOrRegisterBrokerHistogram(responseSizeMetric, addr, r),
		brokerRequestLatency:     getOrRegisterBrokerHistogram(requestLatencyMetric, addr, r),
		brokerConnectionFailures: getOrRegisterBrokerMeter(connectionFailuresMetric, addr, r),
	}
}

func (m *brokerMetrics) updateOutgoingCommunicationMetrics(bytes int) {
	m.requestRate.Mark(1)
	m.brokerRequestRate.Mark(1)

	m.outgoingByteRate.Mark(int64(bytes))
	m.brokerOutgoingByteRate.Mark(int64(bytes))

	m.requestSize.Update(int64(bytes))
	m.brokerRequestSize.Update(int64(bytes))
}

func (m *brokerMetrics) updateIncomingCommunicationMetrics(bytes int, requestLatencyMs int64) {
	m.responseRate.Mark(1)
	m.brokerResponseRate.Mark(1)

	m.incomingByteRate.Mark(int64(bytes))
	m.brokerIncomingByteRate.Mark(int64(bytes))

	m.responseSize.Update(int64(bytes))
	m.brokerResponseSize.Update(int64(bytes))

	m.requestLatency.Update(requestLatencyMs)
	m.brokerRequestLatency.Update(requestLatencyMs)
}

func (m *brokerMetrics) markConnectionFailure() {
	m.connectionFailures.Mark(1)
	m.brokerConnectionFailures.Mark(1)
}
