package metrics

import (
	"context"
	"fmt"

	"github.com/dandori-work/fcfs-booking/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type outboxStatsCollector struct {
	store          store.Store
	eventsByStatus *prometheus.Desc
}

func NewOutboxStatsCollector(s store.Store) prometheus.Collector {
	fqName := func(name string) string {
		return fmt.Sprintf("%s_outbox_%s", fcfsBooking, name)
	}

	return &outboxStatsCollector{
		store: s,
		eventsByStatus: prometheus.NewDesc(
			fqName("events_total"),
			"Total number of outbox events by status.",
			[]string{"status"},
			prometheus.Labels{},
		),
	}
}

func (c *outboxStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.eventsByStatus
}

// Collect implements Collector.
func (c *outboxStatsCollector) Collect(ch chan<- prometheus.Metric) {
	counts, err := c.store.Outbox().CountByStatus(context.Background())
	if err != nil {
		zap.S().Named("outbox_collector").Errorf("failed to collect outbox statistics: %s", err)
		return
	}

	for status, total := range counts {
		ch <- prometheus.MustNewConstMetric(c.eventsByStatus, prometheus.GaugeValue, float64(total), status)
	}
}
