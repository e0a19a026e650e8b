package render

import (
	"fmt"
	"math"

	"route_tracker/internal/models"
)

const (
	NoTimePlaceholder = "Travel Time: –"
	NoRouteSelected   = "No route selected"
)

// Info is the shared info panel. It always describes the selected route.
type Info struct {
	Selected bool   `json:"selected"`
	RouteID  int64  `json:"route_id,omitempty"`
	Name     string `json:"name"`
	Distance string `json:"distance"`
	Time     string `json:"time"`

	// ElapsedTime and RemainingTime are set only with progress and a usable speed.
	ElapsedTime   string `json:"elapsed_time,omitempty"`
	RemainingTime string `json:"remaining_time,omitempty"`

	TotalKm     float64  `json:"total_km"`
	ElapsedKm   *float64 `json:"elapsed_km,omitempty"`
	RemainingKm *float64 `json:"remaining_km,omitempty"`
}

// FormatDuration renders the travel time over km at speed km/h as
// "H hr M min" or "M min". ok is false when speed is absent or not positive.
func FormatDuration(km, speed float64) (s string, ok bool) {
	if !(speed > 0) || math.IsInf(speed, 0) || math.IsNaN(km) {
		return NoTimePlaceholder, false
	}
	minutes := int(math.Round(km / speed * 60))
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%d hr %d min", h, m), true
	}
	return fmt.Sprintf("%d min", m), true
}

// BuildInfo derives the info panel for r, which may be nil.
func BuildInfo(r *models.Route, speed float64) Info {
	if r == nil {
		return Info{Name: NoRouteSelected}
	}

	split := r.SplitDistances()
	info := Info{
		Selected: true,
		RouteID:  r.ID,
		Name:     "Route: " + r.Name,
		TotalKm:  split.Total / 1000,
	}

	if split.Elapsed == nil {
		info.Distance = fmt.Sprintf("Distance: %.2f km", info.TotalKm)
		info.Time, _ = FormatDuration(info.TotalKm, speed)
		return info
	}

	elapsed, remaining := *split.Elapsed/1000, *split.Remaining/1000
	info.ElapsedKm, info.RemainingKm = &elapsed, &remaining
	info.Distance = fmt.Sprintf("Total: %.2f km, Remaining: %.2f km", info.TotalKm, remaining)

	e, ok := FormatDuration(elapsed, speed)
	if !ok {
		info.Time = NoTimePlaceholder
		return info
	}
	rem, _ := FormatDuration(remaining, speed)
	info.ElapsedTime, info.RemainingTime = e, rem
	info.Time = fmt.Sprintf("Elapsed: %s, Remaining: %s", e, rem)
	return info
}
