package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mealcal/mealcal/internal/errors"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Meal store operations by outcome (ok or an error code).",
		},
		[]string{"operation", "outcome"},
	)

	purgedMealsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purged_meals_total",
			Help:      "Deleted meals permanently removed by purge.",
		},
	)
)

// ObserveOperation counts one store operation. The outcome label is "ok"
// or the error code of err.
func ObserveOperation(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(errors.As(err).Code)
	}
	operationsTotal.WithLabelValues(op, outcome).Inc()
}

// AddPurged adds n to the purged meals counter.
func AddPurged(n int) {
	if n > 0 {
		purgedMealsTotal.Add(float64(n))
	}
}
