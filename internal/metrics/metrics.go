/*
Package metrics exposes Prometheus collectors for the reading queue.

Metrics exported:

  - readinglist_books_read: Gauge of finished books
  - readinglist_books_unread: Gauge of books still waiting
  - readinglist_books_added_total: Counter of books added
  - readinglist_books_finished_total: Counter of finish transitions
  - readinglist_history_write_failures_total: Counter of history records that could not be stored
*/
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "readinglist"

// Metrics holds the queue collectors
type Metrics struct {
	booksRead     prometheus.Gauge
	booksUnread   prometheus.Gauge
	booksAdded    prometheus.Counter
	booksFinished prometheus.Counter
	historyFailed prometheus.Counter
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		booksRead: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "books_read",
			Help:      "Number of books marked as read.",
		}),
		booksUnread: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "books_unread",
			Help:      "Number of books not read yet.",
		}),
		booksAdded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "books_added_total",
			Help:      "Total books added to the reading list.",
		}),
		booksFinished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "books_finished_total",
			Help:      "Total books finished.",
		}),
		historyFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_write_failures_total",
			Help:      "Total finished books that could not be written to the history store.",
		}),
	}
}

// ObserveQueue sets the read/unread gauges
func (m *Metrics) ObserveQueue(read, unread int) {
	m.booksRead.Set(float64(read))
	m.booksUnread.Set(float64(unread))
}

// BookAdded increments the added counter
func (m *Metrics) BookAdded() {
	m.booksAdded.Inc()
}

// BookFinished increments the finished counter
func (m *Metrics) BookFinished() {
	m.booksFinished.Inc()
}

// HistoryWriteFailed increments the history failure counter
func (m *Metrics) HistoryWriteFailed() {
	m.historyFailed.Inc()
}
