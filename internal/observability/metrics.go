package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PushRecord summarizes one hook invocation.
type PushRecord struct {
	PullID   uint64
	Commands int
	Success  bool
	Started  time.Time
	Duration time.Duration
}

// PushMetrics holds last-push gauges in a private registry. A hook is a
// short-lived process, so the gauges are exported through the node
// exporter textfile collector instead of an HTTP endpoint.
type PushMetrics struct {
	registry  *prometheus.Registry
	pullID    prometheus.Gauge
	commands  prometheus.Gauge
	success   prometheus.Gauge
	timestamp prometheus.Gauge
	duration  prometheus.Gauge
}

func NewPushMetrics() *PushMetrics {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "proc_receive",
			Subsystem: "last_push",
			Name:      name,
			Help:      help,
		})
	}
	m := &PushMetrics{
		registry:  prometheus.NewRegistry(),
		pullID:    gauge("pull_id", "Pull id allocated by the most recent push (0 if none)."),
		commands:  gauge("commands", "Ref update commands in the most recent push."),
		success:   gauge("success", "1 if the most recent push was diverted successfully."),
		timestamp: gauge("timestamp_seconds", "Unix time the most recent push started."),
		duration:  gauge("duration_seconds", "Wall time of the most recent push."),
	}
	m.registry.MustRegister(m.pullID, m.commands, m.success, m.timestamp, m.duration)
	return m
}

func (m *PushMetrics) Observe(rec PushRecord) {
	m.pullID.Set(float64(rec.PullID))
	m.commands.Set(float64(rec.Commands))
	if rec.Success {
		m.success.Set(1)
	} else {
		m.success.Set(0)
	}
	m.timestamp.Set(float64(rec.Started.Unix()))
	m.duration.Set(rec.Duration.Seconds())
}

// WriteTextfile atomically replaces path with the current gauges.
func (m *PushMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
