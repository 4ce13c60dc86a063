package stats

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"
)

// ErrNoSnapshots возвращает RenderChart, когда рисовать нечего.
var ErrNoSnapshots = errors.New("no snapshots to chart")

func newLine(title, subtitle string, times []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: times}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value"}),
	)
	return line
}

// RenderChart пишет HTML-страницу с графиком числа строк и графиком
// среднего времени операций.
func RenderChart(w io.Writer, snapshots []Snapshot) error {
	if len(snapshots) == 0 {
		return ErrNoSnapshots
	}

	times := make([]string, 0, len(snapshots))
	var rows, inserts, failures, loadTimes, insertTimes []opts.LineData
	for _, s := range snapshots {
		times = append(times, s.Timestamp.Format("15:04:05"))
		rows = append(rows, opts.LineData{Value: s.Rows})
		inserts = append(inserts, opts.LineData{Value: s.Inserts})
		failures = append(failures, opts.LineData{Value: s.InsertFailures})
		loadTimes = append(loadTimes, opts.LineData{Value: s.AvgLoadTimeMs})
		insertTimes = append(insertTimes, opts.LineData{Value: s.AvgInsertTimeMs})
	}

	page := components.NewPage()
	page.PageTitle = "usersgrid"

	rowLine := newLine("Rows", "Grid size after each load", times)
	rowLine.AddSeries("rows", rows)
	page.AddCharts(rowLine)

	insertLine := newLine("Inserts", "Submitted / failed", times)
	insertLine.AddSeries("inserts", inserts)
	insertLine.AddSeries("failures", failures)
	page.AddCharts(insertLine)

	timeLine := newLine("Average time (ms)", "SELECT / INSERT", times)
	timeLine.AddSeries("SELECT", loadTimes)
	timeLine.AddSeries("INSERT", insertTimes)
	page.AddCharts(timeLine)

	return page.Render(w)
}
