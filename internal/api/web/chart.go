package web

import (
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/spec-kit/querydesk/internal/domain"
)

const (
	chartCenter = 100
	chartRadius = 70.0
	chartStroke = 28.0
)

var chartColors = map[domain.QueryStatus]string{
	domain.QueryStatusOpen:   "#00cc96",
	domain.QueryStatusClosed: "#ff6361",
}

// statusChart is the rendered donut plus its legend.
type statusChart struct {
	SVG    template.HTML
	Legend []legendEntry
}

type legendEntry struct {
	Label   string
	Count   int64
	Percent string
	Color   string
}

// newStatusChart draws one donut segment per non-empty status. An empty
// distribution yields a zero chart so the page can show a notice instead.
func newStatusChart(stats domain.QueryStats) statusChart {
	total := stats.Total()
	if total <= 0 {
		return statusChart{}
	}

	segments := []struct {
		status domain.QueryStatus
		count  int64
	}{
		{domain.QueryStatusOpen, stats.Open},
		{domain.QueryStatusClosed, stats.Closed},
	}

	circumference := 2 * math.Pi * chartRadius
	var b strings.Builder
	fmt.Fprintf(&b, `<svg class="chart" viewBox="0 0 %d %d" role="img" aria-label="Query status distribution">`, 2*chartCenter, 2*chartCenter)

	chart := statusChart{}
	offset := 0.0
	for _, s := range segments {
		share := float64(s.count) / float64(total)
		color := chartColors[s.status]
		chart.Legend = append(chart.Legend, legendEntry{
			Label:   string(s.status),
			Count:   s.count,
			Percent: fmt.Sprintf("%.1f%%", share*100),
			Color:   color,
		})
		if s.count == 0 {
			continue
		}
		length := circumference * share
		fmt.Fprintf(&b,
			`<circle cx="%d" cy="%d" r="%.0f" fill="none" stroke="%s" stroke-width="%.0f" stroke-dasharray="%.2f %.2f" stroke-dashoffset="%.2f" transform="rotate(-90 %d %d)"><title>%s: %d</title></circle>`,
			chartCenter, chartCenter, chartRadius, color, chartStroke,
			length, circumference-length, -offset,
			chartCenter, chartCenter, s.status, s.count)
		offset += length
	}
	fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" class="chart-total">%d</text></svg>`, chartCenter, chartCenter+10, total)

	chart.SVG = template.HTML(b.String()) //nolint:gosec // built from numbers and fixed labels only
	return chart
}
