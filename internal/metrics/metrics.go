package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "ledger"

// Service holds the prometheus registry served on /metrics. It implements
// ledger.Recorder.
type Service struct {
	Registry *prometheus.Registry

	pageFetches       *prometheus.CounterVec
	pageFetchDuration *prometheus.HistogramVec
	selections        *prometheus.CounterVec
}

func New() (*Service, error) {
	s := &Service{
		Registry: prometheus.NewRegistry(),
		pageFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_fetches_total",
			Help:      "Address page requests by outcome.",
		}, []string{"outcome"}),
		pageFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_fetch_duration_seconds",
			Help:      "Time from page request to resolution, device round trips and balance queries included.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"outcome"}),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "address_selections_total",
			Help:      "Address selections by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.pageFetches,
		s.pageFetchDuration,
		s.selections,
	} {
		if err := s.Registry.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register collector")
		}
	}

	return s, nil
}

func (s *Service) ObservePageFetch(outcome string, duration time.Duration) {
	s.pageFetches.WithLabelValues(outcome).Inc()
	s.pageFetchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (s *Service) ObserveSelection(outcome string) {
	s.selections.WithLabelValues(outcome).Inc()
}
