package ui

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"dispatchboard/app"
	"dispatchboard/domain/metrics"
)

var errNoAggregates = errors.New("no aggregates loaded yet")

// handleDigest renders a human-readable analytics digest: the dashboard
// aggregates composed as markdown, then rendered to HTML for preview or
// email embedding.
func (a *App) handleDigest(w http.ResponseWriter, r *http.Request) {
	if err := a.dashboard.LoadQueue(r.Context(), false); err != nil {
		a.log.Warn("digest load: %v", err)
	}
	agg, status := a.dashboard.QueueView()
	if agg == nil {
		httpError(w, http.StatusServiceUnavailable, errNoAggregates)
		return
	}

	md := composeDigest(agg, status)

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	out := markdown.ToHTML([]byte(md), p, renderer)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(out)
}

// composeDigest formats the aggregates as a markdown document
func composeDigest(agg *app.DashboardAggregates, status app.LoadStatus) string {
	var b strings.Builder

	b.WriteString("# Dispatch analytics digest\n\n")
	if !status.LastUpdatedAt.IsZero() {
		fmt.Fprintf(&b, "_As of %s_\n\n", status.LastUpdatedAt.Format("Jan 2 2006 15:04 MST"))
	}
	fmt.Fprintf(&b, "**%d orders** in window (%s buckets), %d bucketed.\n\n",
		agg.TotalOrders, agg.Granularity, agg.BucketedOrders)

	b.WriteString("## Price summary\n\n")
	b.WriteString("| n | mean | std | p50 | p95 | IQR |\n|---|---|---|---|---|---|\n")
	ps := agg.PriceStats
	fmt.Fprintf(&b, "| %d | %.2f | %.2f | %.2f | %.2f | %.2f |\n\n",
		ps.N, ps.Mean, ps.Std, ps.P50, ps.P95, ps.IQR)

	b.WriteString("## Pipeline\n\n")
	for _, step := range agg.Funnel {
		fmt.Fprintf(&b, "- **%s**: %d\n", step.Label, step.Count)
	}
	b.WriteString("\n")

	writeDigestList(&b, "Top service types", agg.TopServices.Entries)
	writeDigestList(&b, "Top areas", agg.TopAreas.Entries)
	writeDigestList(&b, "Courier leaderboard", agg.Leaderboard.Entries)

	return b.String()
}

func writeDigestList(b *strings.Builder, title string, entries []metrics.TopNEntry) {
	fmt.Fprintf(b, "## %s\n\n", title)
	for i, e := range entries {
		fmt.Fprintf(b, "%d. %s: %d\n", i+1, e.Label, e.Count)
	}
	b.WriteString("\n")
}
