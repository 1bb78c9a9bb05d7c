package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingSaved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zencontrol",
			Name:      "booking_saved_total",
			Help:      "Count of committed booking saves by kind (create, edit, status).",
		},
		[]string{"kind"},
	)

	bookingRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zencontrol",
			Name:      "booking_rejected_total",
			Help:      "Count of booking submissions rejected by validation.",
		},
		[]string{"reason"},
	)

	bookingDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zencontrol",
			Name:      "booking_deleted_total",
			Help:      "Count of bookings deleted explicitly.",
		},
	)

	archivePurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zencontrol",
			Name:      "archive_purged_bookings_total",
			Help:      "Count of bookings removed by monthly archival.",
		},
	)

	mirrorSync = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zencontrol",
			Name:      "mirror_sync_total",
			Help:      "Count of remote mirror operations by op and result.",
		},
		[]string{"op", "result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zencontrol",
			Name:      "http_requests_total",
			Help:      "Count of operator API requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingSaved, bookingRejected, bookingDeleted, archivePurged, mirrorSync, httpRequests)
	})
}

func IncBookingSaved(kind string) {
	bookingSaved.WithLabelValues(kind).Inc()
}

func IncBookingRejected(reason string) {
	bookingRejected.WithLabelValues(reason).Inc()
}

func IncBookingDeleted() {
	bookingDeleted.Inc()
}

func AddArchivePurged(n int) {
	archivePurged.Add(float64(n))
}

func IncMirrorSync(op, result string) {
	mirrorSync.WithLabelValues(op, result).Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
