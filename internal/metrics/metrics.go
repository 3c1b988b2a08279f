package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReservationRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quickreserve_reservation_requests_total",
		Help: "Reservation requests by outcome.",
	},
		[]string{"result"},
	)

	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quickreserve_transitions_total",
		Help: "Reservations that reached a terminal status.",
	},
		[]string{"status"},
	)

	CallPlacementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quickreserve_call_placements_total",
		Help: "Outbound venue calls by outcome.",
	},
		[]string{"result"},
	)

	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quickreserve_webhook_events_total",
		Help: "Telephony webhook deliveries by kind and event.",
	},
		[]string{"kind", "event"},
	)

	LostRacesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quickreserve_transition_conflicts_total",
		Help: "Terminal writes skipped because the reservation was no longer pending.",
	})
)
