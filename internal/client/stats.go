package client

import (
	"math"
	"strings"
	"time"

	"github.com/rigaku-tools/machine-fleet-backend/internal/models"
)

// FleetStats are the dashboard header aggregates.
type FleetStats struct {
	Total         int
	Running       int
	Error         int
	AvgEfficiency int
}

// ComputeStats derives the aggregates from the in-memory fleet list.
func ComputeStats(machines []Machine) FleetStats {
	stats := FleetStats{Total: len(machines)}
	if stats.Total == 0 {
		return stats
	}

	sum := 0
	for _, m := range machines {
		switch m.Status {
		case models.StatusRunning:
			stats.Running++
		case models.StatusError:
			stats.Error++
		}
		sum += m.Efficiency
	}
	stats.AvgEfficiency = int(math.Round(float64(sum) / float64(stats.Total)))
	return stats
}

// FilterByName returns machines whose name contains the term,
// case-insensitively. An empty term matches everything.
func FilterByName(machines []Machine, term string) []Machine {
	if term == "" {
		return machines
	}
	term = strings.ToLower(term)

	filtered := make([]Machine, 0, len(machines))
	for _, m := range machines {
		if strings.Contains(strings.ToLower(m.Name), term) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// FilterByNameOrCity matches the term against machine name or location city.
func FilterByNameOrCity(machines []Machine, term string) []Machine {
	if term == "" {
		return machines
	}
	term = strings.ToLower(term)

	filtered := make([]Machine, 0, len(machines))
	for _, m := range machines {
		if strings.Contains(strings.ToLower(m.Name), term) ||
			strings.Contains(strings.ToLower(m.Location.City), term) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// HistoryBook accumulates per-machine efficiency samples across refreshes so
// the dashboard can chart a trend. Entries are keyed by machine name.
type HistoryBook struct {
	limit  int
	points map[string][]HistoryPoint
}

// NewHistoryBook creates a book that keeps at most limit samples per machine.
func NewHistoryBook(limit int) *HistoryBook {
	if limit <= 0 {
		limit = 20
	}
	return &HistoryBook{
		limit:  limit,
		points: make(map[string][]HistoryPoint),
	}
}

// Observe records one sample per machine and attaches the accumulated
// history to the returned slice.
func (b *HistoryBook) Observe(machines []Machine, now time.Time) []Machine {
	seen := make(map[string]struct{}, len(machines))

	for i := range machines {
		m := &machines[i]
		seen[m.Name] = struct{}{}

		history := append(b.points[m.Name], HistoryPoint{Time: now, Value: m.Efficiency})
		if len(history) > b.limit {
			history = history[len(history)-b.limit:]
		}
		b.points[m.Name] = history
		m.History = history
	}

	// Drop machines that left the fleet.
	for name := range b.points {
		if _, ok := seen[name]; !ok {
			delete(b.points, name)
		}
	}
	return machines
}
