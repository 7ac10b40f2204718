// Command chart fetches the expense totals from CHART_BASE_URL once and
// draws the doughnut chart to CHART_OUTPUT. It exits 1 only when the load
// failed; an empty data set is not an error.
package main

import (
	"os"

	"gonum.org/v1/plot/vg"

	"gastos/internal/cli"
	"gastos/internal/loader"
	"gastos/internal/log"
	"gastos/internal/render"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, logger := cli.Bootstrap(log.ComponentLoader)

	ctx, stop := cli.SignalContext()
	defer stop()

	out, err := render.NewFile(cfg.ChartOutput, vg.Points(float64(cfg.ChartWidth)), vg.Points(float64(cfg.ChartHeight)))
	if err != nil {
		logger.LogError(ctx, "Invalid chart output", err, log.OpStartup, nil)
		return 1
	}

	l, err := loader.New(loader.Config{
		BaseURL:  cfg.ChartBaseURL,
		Timeout:  cfg.ChartTimeout,
		Renderer: out,
		Logger:   logger,
	})
	if err != nil {
		logger.LogError(ctx, "Invalid loader configuration", err, log.OpStartup, nil)
		return 1
	}

	outcome := l.Initialize(ctx)
	if outcome.Status == loader.StatusFailed {
		return 1
	}
	if outcome.Status == loader.StatusRendered {
		logger.Info("Chart written", log.FieldOutput, cfg.ChartOutput, log.FieldSegments, outcome.Segments)
	}
	return 0
}
