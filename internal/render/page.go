package render

import (
	"context"
	"fmt"
	"html/template"
	"io"

	"gastos/internal/chart"
	appweb "gastos/web"
)

// ChartJSURL is the Chart.js build loaded by generated pages.
const ChartJSURL = "https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"

var pageTemplates = template.Must(template.ParseFS(appweb.TemplatesFS, "templates/*.html"))

// PageData is the view model of the chart_page template.
type PageData struct {
	Title      string
	Empty      bool
	ChartJSURL string
	Config     chart.Config
}

// Page writes a standalone HTML document that draws the chart with Chart.js
// on a canvas element with id "expenseChart".
type Page struct {
	ChartJSURL string
}

// Draw writes the page for cfg to w.
func (pg Page) Draw(ctx context.Context, w io.Writer, cfg chart.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WritePage(w, pg.data(cfg))
}

func (pg Page) data(cfg chart.Config) PageData {
	src := pg.ChartJSURL
	if src == "" {
		src = ChartJSURL
	}
	title := cfg.Options.Plugins.Title.Text
	if title == "" {
		title = chart.TitleText
	}
	return PageData{
		Title:      title,
		Empty:      cfg.Segments() == 0,
		ChartJSURL: src,
		Config:     cfg,
	}
}

// WritePage executes the chart_page template.
func WritePage(w io.Writer, data PageData) error {
	if err := pageTemplates.ExecuteTemplate(w, "chart_page", data); err != nil {
		return fmt.Errorf("execute chart page: %w", err)
	}
	return nil
}

// DashboardData is the view model of the dashboard template.
type DashboardData struct {
	Chart       PageData
	Today       string
	PeriodLabel string
	Total       string
	Flash       string
	FlashError  bool
}

// NewPageData prepares cfg for the chart templates.
func NewPageData(cfg chart.Config) PageData {
	return Page{}.data(cfg)
}

// WriteDashboard executes the dashboard template.
func WriteDashboard(w io.Writer, data DashboardData) error {
	if err := pageTemplates.ExecuteTemplate(w, "dashboard", data); err != nil {
		return fmt.Errorf("execute dashboard: %w", err)
	}
	return nil
}
