package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/rajamantri/internal/model"
)

const namespace = "rajamantri"

// Trigger labels for role assignment
const (
	TriggerAuto   = "auto"
	TriggerManual = "manual"
)

// Metrics holds the game counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RoomsCreated    prometheus.Counter
	PlayersJoined   prometheus.Counter
	RolesAssigned   *prometheus.CounterVec
	GuessesResolved *prometheus.CounterVec
	PointsAwarded   *prometheus.CounterVec
}

// New creates the game metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Number of rooms created.",
		}),
		PlayersJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "players_joined_total",
			Help:      "Number of players admitted to a room, creators included.",
		}),
		RolesAssigned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "role_assignments_total",
			Help:      "Number of rooms whose roles were dealt, by trigger.",
		}, []string{"trigger"}),
		GuessesResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guesses_resolved_total",
			Help:      "Number of resolved Mantri guesses, by outcome.",
		}, []string{"outcome"}),
		PointsAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_awarded_total",
			Help:      "Points awarded at round resolution, by role.",
		}, []string{"role"}),
	}

	if reg != nil {
		reg.MustRegister(m.RoomsCreated, m.PlayersJoined, m.RolesAssigned, m.GuessesResolved, m.PointsAwarded)
	}
	return m
}

// RoomCreated records a new room
func (m *Metrics) RoomCreated() {
	if m == nil {
		return
	}
	m.RoomsCreated.Inc()
	m.PlayersJoined.Inc()
}

// PlayerJoined records a player admitted to an existing room
func (m *Metrics) PlayerJoined() {
	if m == nil {
		return
	}
	m.PlayersJoined.Inc()
}

// RolesDealt records a role assignment
func (m *Metrics) RolesDealt(trigger string) {
	if m == nil {
		return
	}
	m.RolesAssigned.WithLabelValues(trigger).Inc()
}

// RoundResolved records the outcome and the points each role ended with
func (m *Metrics) RoundResolved(roles model.Roles, result model.RoundResult) {
	if m == nil {
		return
	}
	outcome := "wrong"
	if result.Correct {
		outcome = "correct"
	}
	m.GuessesResolved.WithLabelValues(outcome).Inc()
	for pid, points := range result.Points {
		if role, ok := roles[pid]; ok && points > 0 {
			m.PointsAwarded.WithLabelValues(role.String()).Add(float64(points))
		}
	}
}
