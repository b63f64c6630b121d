package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kalitiri_active_sessions",
			Help: "Sessions currently resident in memory",
		},
	)
	Commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kalitiri_commands_total",
			Help: "Player commands by type and outcome",
		},
		[]string{"command", "result"},
	)
	Checkpoints = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kalitiri_checkpoints_total",
			Help: "Snapshot writes by outcome",
		},
		[]string{"result"},
	)
	Rehydrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kalitiri_rehydrations_total",
			Help: "Session lookups that had to consult the snapshot store",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(Commands)
	prometheus.MustRegister(Checkpoints)
	prometheus.MustRegister(Rehydrations)
}
