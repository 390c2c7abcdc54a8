package excel

import (
	"fmt"
	"io"

	"dispatchboard/app"
	"dispatchboard/domain/metrics"

	"github.com/xuri/excelize/v2"
)

// ReportWriter exports dashboard aggregates as an Excel workbook for the
// admin console's download button.
type ReportWriter struct{}

// NewReportWriter creates a report writer
func NewReportWriter() *ReportWriter {
	return &ReportWriter{}
}

// WriteDashboardReport renders the aggregates into a workbook and streams
// it to w. One sheet per view: summary, series, funnel, breakdowns.
func (rw *ReportWriter) WriteDashboardReport(w io.Writer, agg *app.DashboardAggregates) error {
	if agg == nil {
		return fmt.Errorf("no dashboard aggregates to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	f.SetSheetName("Sheet1", summarySheet)

	writeRow(f, summarySheet, 1, "Metric", "Value")
	rows := [][2]interface{}{
		{"Granularity", string(agg.Granularity)},
		{"Total orders", agg.TotalOrders},
		{"Bucketed orders", agg.BucketedOrders},
		{"Price n", agg.PriceStats.N},
		{"Price mean", agg.PriceStats.Mean},
		{"Price std", agg.PriceStats.Std},
		{"Price p50", agg.PriceStats.P50},
		{"Price p95", agg.PriceStats.P95},
		{"Price IQR", agg.PriceStats.IQR},
	}
	for i, r := range rows {
		writeRow(f, summarySheet, i+2, r[0], r[1])
	}

	const seriesSheet = "Series"
	if _, err := f.NewSheet(seriesSheet); err != nil {
		return fmt.Errorf("failed to create series sheet: %w", err)
	}
	writeRow(f, seriesSheet, 1, "Bucket", "Created", "Completed", "Revenue", "Commission")
	for i := 0; i < agg.Series.Len(); i++ {
		writeRow(f, seriesSheet, i+2,
			agg.Series.Labels[i],
			agg.Series.Created[i],
			agg.Series.Completed[i],
			agg.Series.Revenue[i],
			agg.Series.Commission[i])
	}

	const funnelSheet = "Funnel"
	if _, err := f.NewSheet(funnelSheet); err != nil {
		return fmt.Errorf("failed to create funnel sheet: %w", err)
	}
	writeRow(f, funnelSheet, 1, "Stage", "Count", "Ratio")
	for i, step := range agg.Funnel {
		writeRow(f, funnelSheet, i+2, step.Label, step.Count, step.Ratio)
	}

	const breakdownSheet = "Breakdowns"
	if _, err := f.NewSheet(breakdownSheet); err != nil {
		return fmt.Errorf("failed to create breakdown sheet: %w", err)
	}
	row := 1
	row = writeTopN(f, breakdownSheet, row, "Service types", agg.TopServices.Entries)
	row = writeTopN(f, breakdownSheet, row, "Areas", agg.TopAreas.Entries)
	row = writeTopN(f, breakdownSheet, row, "Urgency", agg.Urgency.Entries)
	writeTopN(f, breakdownSheet, row, "Courier leaderboard", agg.Leaderboard.Entries)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeTopN writes a titled ranked list block and returns the next free row
func writeTopN(f *excelize.File, sheet string, row int, title string, entries []metrics.TopNEntry) int {
	writeRow(f, sheet, row, title)
	row++
	writeRow(f, sheet, row, "Label", "Count", "Ratio")
	row++
	for _, e := range entries {
		writeRow(f, sheet, row, e.Label, e.Count, e.Ratio)
		row++
	}
	return row + 1 // blank spacer row between blocks
}

func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			continue
		}
		_ = f.SetCellValue(sheet, cell, v)
	}
}
