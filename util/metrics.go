package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	roomsCreatedCounter      prometheus.Counter
	roomsCrashedCounter      prometheus.Counter
	activeRoomsGauge         prometheus.Gauge
	actionsAcceptedCounter   *prometheus.CounterVec
	actionsRejectedCounter   *prometheus.CounterVec
	eventsPublishedCounter   *prometheus.CounterVec
	eventsDroppedCounter     prometheus.Counter
	historySaveFailedCounter prometheus.Counter
}

func (m *metrics) RoomCreated() {
	m.roomsCreatedCounter.Inc()
}

func (m *metrics) RoomCrashed() {
	m.roomsCrashedCounter.Inc()
}

func (m *metrics) SetActiveRooms(count int) {
	m.activeRoomsGauge.Set(float64(count))
}

func (m *metrics) ActionAccepted(op string) {
	m.actionsAcceptedCounter.WithLabelValues(op).Inc()
}

func (m *metrics) ActionRejected(op string, kind string) {
	m.actionsRejectedCounter.WithLabelValues(op, kind).Inc()
}

func (m *metrics) EventPublished(eventType string) {
	m.eventsPublishedCounter.WithLabelValues(eventType).Inc()
}

func (m *metrics) EventDropped() {
	m.eventsDroppedCounter.Inc()
}

func (m *metrics) HistorySaveFailed() {
	m.historySaveFailedCounter.Inc()
}

var Metrics = &metrics{
	roomsCreatedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "rooms_created_total",
		Help: "Total number of rooms created on first reference",
	}),
	roomsCrashedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "rooms_crashed_total",
		Help: "Total number of room goroutines that returned due to a panic",
	}),
	activeRoomsGauge: promauto.NewGauge(prometheus.GaugeOpts{
		Name: "active_rooms_count",
		Help: "Count of the rooms in the manager's room map",
	}),
	actionsAcceptedCounter: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "room_actions_accepted_total",
		Help: "Total number of room operations that succeeded",
	}, []string{"op"}),
	actionsRejectedCounter: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "room_actions_rejected_total",
		Help: "Total number of room operations that were rejected",
	}, []string{"op", "kind"}),
	eventsPublishedCounter: promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "room_events_published_total",
		Help: "Total number of room events published",
	}, []string{"type"}),
	eventsDroppedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "room_events_dropped_total",
		Help: "Total number of room events dropped by slow consumers",
	}),
	historySaveFailedCounter: promauto.NewCounter(prometheus.CounterOpts{
		Name: "hand_history_save_failed_total",
		Help: "Total number of finished hands that could not be archived",
	}),
}
