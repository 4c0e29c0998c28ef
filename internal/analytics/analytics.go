// Package analytics derives dashboard metrics from an already fetched ticket collection.
// Nothing here talks to the database.
package analytics

import (
	"fmt"
	"time"

	"github.com/supporthub/support-dashboard/internal/domain"
)

// RecentActivityLimit is how many tickets the recent activity panel shows.
const RecentActivityLimit = 5

// Bucket is one bar or slice of a histogram.
type Bucket struct {
	Key   string `json:"key"`
	Label string `json:"name"`
	Count int    `json:"value"`
}

// Histogram is an ordered list of buckets.
type Histogram []Bucket

// Total sums all bucket counts.
func (h Histogram) Total() int {
	total := 0
	for _, b := range h {
		total += b.Count
	}
	return total
}

// Count returns the count for key, or zero when there is no such bucket.
func (h Histogram) Count(key string) int {
	for _, b := range h {
		if b.Key == key {
			return b.Count
		}
	}
	return 0
}

// NonZero drops empty buckets, for pie-style rendering.
func (h Histogram) NonZero() Histogram {
	out := make(Histogram, 0, len(h))
	for _, b := range h {
		if b.Count > 0 {
			out = append(out, b)
		}
	}
	return out
}

// StatusHistogram counts tickets per status. The buckets sum to len(tickets) as long as
// every ticket carries a known status.
func StatusHistogram(tickets []domain.TicketView) Histogram {
	counts := make(map[domain.TicketStatus]int, 4)
	for _, t := range tickets {
		counts[t.Status]++
	}
	out := make(Histogram, 0, 4)
	for _, status := range domain.TicketStatuses() {
		out = append(out, Bucket{Key: string(status), Label: status.Label(), Count: counts[status]})
	}
	return out
}

// PriorityHistogram counts tickets per priority; all four buckets are always present.
func PriorityHistogram(tickets []domain.TicketView) Histogram {
	counts := make(map[domain.TicketPriority]int, 4)
	for _, t := range tickets {
		counts[t.Priority]++
	}
	out := make(Histogram, 0, 4)
	for _, priority := range domain.TicketPriorities() {
		out = append(out, Bucket{Key: string(priority), Label: priority.Label(), Count: counts[priority]})
	}
	return out
}

// CategoryHistogram counts tickets per category.
func CategoryHistogram(tickets []domain.TicketView) Histogram {
	counts := make(map[domain.TicketCategory]int, 5)
	for _, t := range tickets {
		counts[t.Category]++
	}
	out := make(Histogram, 0, 5)
	for _, category := range domain.TicketCategories() {
		out = append(out, Bucket{Key: string(category), Label: category.Label(), Count: counts[category]})
	}
	return out
}

// Summary holds the headline metric cards.
type Summary struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Closed     int `json:"closed"`
	Urgent     int `json:"urgent"`
}

// Summarize computes the metric cards.
func Summarize(tickets []domain.TicketView) Summary {
	s := Summary{Total: len(tickets)}
	for _, t := range tickets {
		switch t.Status {
		case domain.TicketStatusOpen:
			s.Open++
		case domain.TicketStatusInProgress:
			s.InProgress++
		case domain.TicketStatusResolved:
			s.Resolved++
		case domain.TicketStatusClosed:
			s.Closed++
		}
		if t.Priority == domain.TicketPriorityUrgent {
			s.Urgent++
		}
	}
	return s
}

// RecentActivity returns the first n tickets of a recency-sorted collection.
func RecentActivity(tickets []domain.TicketView, n int) []domain.TicketView {
	if n > len(tickets) {
		n = len(tickets)
	}
	if n < 0 {
		n = 0
	}
	out := make([]domain.TicketView, n)
	copy(out, tickets[:n])
	return out
}

// AverageResolution returns the mean time from creation to first resolution. ok is false
// when there are no usable samples.
func AverageResolution(samples []domain.ResolutionSample) (avg time.Duration, ok bool) {
	var total time.Duration
	n := 0
	for _, s := range samples {
		if s.ResolvedAt.Before(s.CreatedAt) {
			continue
		}
		total += s.ResolvedAt.Sub(s.CreatedAt)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return total / time.Duration(n), true
}

// FormatDuration renders a resolution time the way the metric card shows it.
func FormatDuration(d time.Duration, ok bool) string {
	if !ok {
		return "n/a"
	}
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%.1f days", d.Hours()/24)
	case d >= time.Hour:
		return fmt.Sprintf("%.1f hours", d.Hours())
	default:
		return fmt.Sprintf("%.0f minutes", d.Minutes())
	}
}

// Report is everything the analytics view renders.
type Report struct {
	Summary              Summary             `json:"summary"`
	Status               Histogram           `json:"status"`
	Priority             Histogram           `json:"priority"`
	Category             Histogram           `json:"category"`
	Recent               []domain.TicketView `json:"recent"`
	AverageResolution    string              `json:"average_resolution"`
	AverageResolutionSec *float64            `json:"average_resolution_seconds"`
}

// Build assembles a report from tickets and resolution samples.
func Build(tickets []domain.TicketView, samples []domain.ResolutionSample) Report {
	avg, ok := AverageResolution(samples)
	report := Report{
		Summary:           Summarize(tickets),
		Status:            StatusHistogram(tickets),
		Priority:          PriorityHistogram(tickets),
		Category:          CategoryHistogram(tickets),
		Recent:            RecentActivity(tickets, RecentActivityLimit),
		AverageResolution: FormatDuration(avg, ok),
	}
	if ok {
		seconds := avg.Seconds()
		report.AverageResolutionSec = &seconds
	}
	return report
}
