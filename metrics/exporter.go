package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "gamehub"

// Exporter exposes a Collector to Prometheus.
// Values are read from a fresh Snapshot on every scrape, so the Collector
// stays the single source of truth.
type Exporter struct {
	collector *Collector

	connects      *prometheus.Desc
	connectFailed *prometheus.Desc
	disconnects   *prometheus.Desc
	bindTimeouts  *prometheus.Desc
	calls         *prometheus.Desc
	callErrors    *prometheus.Desc
	parseErrors   *prometheus.Desc
	navigations   *prometheus.Desc
	publishes     *prometheus.Desc
}

// NewExporter creates an Exporter for c.
func NewExporter(c *Collector) *Exporter {
	snap := c.Snapshot()
	constLabels := prometheus.Labels{
		"session_id":       snap.SessionID,
		"host_package":     snap.HostPackage,
		"provider_package": snap.ProviderPackage,
	}
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, constLabels)
	}

	return &Exporter{
		collector:     c,
		connects:      desc("connects_total", "Connect attempts by outcome.", "outcome"),
		connectFailed: desc("connect_failures_total", "Failed connect sequences by final status.", "status"),
		disconnects:   desc("disconnects_total", "Disconnects delivered by the channel layer."),
		bindTimeouts:  desc("bind_timeouts_total", "Binds that did not complete in time."),
		calls:         desc("calls_total", "Operation invocations.", "operation"),
		callErrors:    desc("call_errors_total", "Operation errors by operation and kind.", "operation", "kind"),
		parseErrors:   desc("ranking_parse_errors_total", "Leaderboard payloads that could not be parsed."),
		navigations:   desc("navigations_total", "External navigations by outcome.", "outcome"),
		publishes:     desc("adapter_publishes_total", "Adapter notifications by outcome.", "outcome"),
	}
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.connects
	ch <- e.connectFailed
	ch <- e.disconnects
	ch <- e.bindTimeouts
	ch <- e.calls
	ch <- e.callErrors
	ch <- e.parseErrors
	ch <- e.navigations
	ch <- e.publishes
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	s := e.collector.Snapshot()

	counter := func(d *prometheus.Desc, v int64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}

	counter(e.connects, s.ConnectsStarted, "started")
	counter(e.connects, s.ConnectsSucceeded, "succeeded")
	counter(e.connects, s.ConnectsFailed, "failed")
	for status, v := range s.FailedByStatus {
		counter(e.connectFailed, v, status)
	}
	counter(e.disconnects, s.Disconnects)
	counter(e.bindTimeouts, s.BindTimeouts)

	for op, v := range s.Calls {
		counter(e.calls, v, op)
	}
	for op, v := range s.ChannelFaults {
		counter(e.callErrors, v, op, "channel_fault")
	}
	for op, v := range s.DecodeErrors {
		counter(e.callErrors, v, op, "decode")
	}
	for op, v := range s.RemoteFailures {
		counter(e.callErrors, v, op, "remote_status")
	}
	counter(e.parseErrors, s.ParseErrors)

	counter(e.navigations, s.Navigations-s.NavigationFailures, "opened")
	counter(e.navigations, s.NavigationFailures, "failed")
	counter(e.publishes, s.PublishSuccess, "success")
	counter(e.publishes, s.PublishFailure, "failure")
}

// NewRegistry returns a registry holding an Exporter for c plus the
// standard Go runtime and process collectors.
func NewRegistry(c *Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(NewExporter(c))
	return reg
}

// Verify Exporter implements prometheus.Collector.
var _ prometheus.Collector = (*Exporter)(nil)
