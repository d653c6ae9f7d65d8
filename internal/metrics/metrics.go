package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchroom_matches_created_total",
		Help: "Matches created, by game kind.",
	}, []string{"game_kind"})

	MovesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchroom_moves_applied_total",
		Help: "Moves accepted and applied, by game kind.",
	}, []string{"game_kind"})

	MovesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchroom_moves_rejected_total",
		Help: "Moves rejected during validation, by game kind.",
	}, []string{"game_kind"})

	MatchesEnded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchroom_matches_ended_total",
		Help: "Matches that reached a terminal result, by result.",
	}, []string{"result"})

	TimeoutsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchroom_timeouts_handled_total",
		Help: "Clock expirations handled, by outcome (ended or skipped).",
	}, []string{"outcome"})

	SentinelErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchroom_sentinel_errors_total",
		Help: "Errors while processing expired deadline notifications.",
	})
)
