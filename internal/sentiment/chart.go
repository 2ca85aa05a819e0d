package sentiment

import (
	"fmt"
	"math"
)

// Chart geometry, in SVG user units.
const (
	chartCenter = 100.0
	chartRadius = 100.0
)

var labelColors = map[Label]string{
	Positive: "#2e7d32",
	Neutral:  "#9e9e9e",
	Negative: "#c62828",
}

// Slice is one wedge of the sentiment pie.
type Slice struct {
	Label   Label   `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
	Color   string  `json:"color"`
	// Path is an SVG path in a 200x200 viewBox.
	Path string `json:"path"`
}

// PieSlices turns a distribution into chart wedges, starting at twelve
// o'clock and running clockwise. Empty labels are omitted; an empty
// distribution yields no slices.
func PieSlices(d Distribution) []Slice {
	total := d.Total()
	if total == 0 {
		return nil
	}

	var slices []Slice
	angle := -math.Pi / 2
	for _, l := range Labels {
		n := d.Count(l)
		if n == 0 {
			continue
		}
		frac := float64(n) / float64(total)
		sweep := frac * 2 * math.Pi
		slices = append(slices, Slice{
			Label:   l,
			Count:   n,
			Percent: math.Round(frac*1000) / 10,
			Color:   labelColors[l],
			Path:    wedgePath(angle, sweep),
		})
		angle += sweep
	}
	return slices
}

func wedgePath(start, sweep float64) string {
	if sweep >= 2*math.Pi-1e-9 {
		// A single arc cannot close a full circle.
		return fmt.Sprintf("M %.2f %.2f A %.2f %.2f 0 1 1 %.2f %.2f A %.2f %.2f 0 1 1 %.2f %.2f Z",
			chartCenter-chartRadius, chartCenter,
			chartRadius, chartRadius, chartCenter+chartRadius, chartCenter,
			chartRadius, chartRadius, chartCenter-chartRadius, chartCenter)
	}
	x0 := chartCenter + chartRadius*math.Cos(start)
	y0 := chartCenter + chartRadius*math.Sin(start)
	x1 := chartCenter + chartRadius*math.Cos(start+sweep)
	y1 := chartCenter + chartRadius*math.Sin(start+sweep)
	large := 0
	if sweep > math.Pi {
		large = 1
	}
	return fmt.Sprintf("M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z",
		chartCenter, chartCenter, x0, y0, chartRadius, chartRadius, large, x1, y1)
}
