package report

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/bstset/internal/harness"
)

const (
	chartWidth  = "100%"
	chartHeight = "500px"
	msPerSecond = 1000
)

// BuildChart returns a bar chart of the min and mean round time per backend.
func BuildChart(results []harness.Result) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "bstset bench",
			Width:     chartWidth,
			Height:    chartHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Workload replay time",
			Subtitle: subtitle(results),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ms"}),
	)

	labels := make([]string, len(results))
	minData := make([]opts.BarData, len(results))
	meanData := make([]opts.BarData, len(results))

	for idx, result := range results {
		labels[idx] = result.Backend
		minData[idx] = opts.BarData{Value: result.Min.Seconds() * msPerSecond}
		meanData[idx] = opts.BarData{Value: result.Mean.Seconds() * msPerSecond}
	}

	bar.SetXAxis(labels)
	bar.AddSeries("min", minData)
	bar.AddSeries("mean", meanData)

	return bar
}

func subtitle(results []harness.Result) string {
	if len(results) == 0 {
		return "no results"
	}

	return fmt.Sprintf("%d ops, %d rounds", results[0].Ops, results[0].Rounds)
}

// WriteChart renders the chart as a standalone HTML page.
func WriteChart(w io.Writer, results []harness.Result) error {
	err := BuildChart(results).Render(w)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	return nil
}

// WriteChartFile renders the chart into path.
func WriteChartFile(path string, results []harness.Result) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}

	defer func() {
		closeErr := out.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close chart file: %w", closeErr)
		}
	}()

	return WriteChart(out, results)
}
