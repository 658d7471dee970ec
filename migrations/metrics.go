package migrations

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// appliedTotal counts migrations run, by migration and direction
	appliedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_migrations_applied_total",
		Help: "Total API payload migrations applied by migration and direction",
	}, []string{"migration", "direction"})

	// failuresTotal counts migration transform failures
	failuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "api_migration_failures_total",
		Help: "Total API payload migration failures by migration and direction",
	}, []string{"migration", "direction"})
)
