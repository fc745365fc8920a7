package sender

import "github.com/prometheus/client_golang/prometheus"

// metrics counts batches handled by a Stack.
type metrics struct {
	reg     prometheus.Registerer
	batches *prometheus.CounterVec
	bytes   *prometheus.CounterVec
	errors  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		reg: reg,
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logship",
			Subsystem: "sender",
			Name:      "batches_sent_total",
			Help:      "Numbers of batches completely handed to the transport",
		}, []string{"mode"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logship",
			Subsystem: "sender",
			Name:      "bytes_sent_total",
			Help:      "Total length in bytes of sent batches",
		}, []string{"mode"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logship",
			Subsystem: "sender",
			Name:      "errors_total",
			Help:      "Numbers of failed sends by error kind",
		}, []string{"mode", "kind"}),
	}

	registered := make([]prometheus.Collector, 0, 3)
	for _, c := range []prometheus.Collector{m.batches, m.bytes, m.errors} {
		if err := reg.Register(c); err != nil {
			for _, r := range registered {
				reg.Unregister(r)
			}
			return nil, err
		}
		registered = append(registered, c)
	}
	return m, nil
}

func (m *metrics) onSuccess(mode Mode, n int) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(mode.String()).Inc()
	m.bytes.WithLabelValues(mode.String()).Add(float64(n))
}

func (m *metrics) onError(mode Mode, kind error) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(mode.String(), kindLabel(kind)).Inc()
}

func (m *metrics) unregister() {
	if m == nil {
		return
	}
	m.reg.Unregister(m.batches)
	m.reg.Unregister(m.bytes)
	m.reg.Unregister(m.errors)
}
