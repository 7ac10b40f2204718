package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"gastos/internal/chart"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/render"
)

// chartData loads totals for p and shapes them for the chart.
func (s *Server) chartData(ctx context.Context, p core.Period) (core.ChartData, core.Money, error) {
	totals, err := s.store.CategoryTotals(ctx, p)
	if err != nil {
		return core.ChartData{}, core.Money{}, err
	}
	var sum core.Money
	for _, t := range totals {
		if t.Amount.Cents > 0 {
			sum.Cents += t.Amount.Cents
		}
	}
	return core.ChartDataFromTotals(totals), sum, nil
}

func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriod(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	data, _, err := s.chartData(r.Context(), p)
	if err != nil {
		log.FromContext(r.Context()).LogError(r.Context(), "Failed to aggregate expenses", err, log.OpAggregate, nil)
		writeError(w, r, http.StatusInternalServerError, "could not load chart data")
		return
	}
	writeJSON(w, r, http.StatusOK, data)
}

// handleChartImage draws the doughnut server side. An empty period answers
// 204 since there is nothing to draw.
func (s *Server) handleChartImage(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriod(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	data, _, err := s.chartData(r.Context(), p)
	if err != nil {
		log.FromContext(r.Context()).LogError(r.Context(), "Failed to aggregate expenses", err, log.OpAggregate, nil)
		writeError(w, r, http.StatusInternalServerError, "could not load chart data")
		return
	}
	if data.IsEmpty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var buf bytes.Buffer
	out := &render.Writer{W: &buf, Format: "svg", Width: s.chartWidth, Height: s.chartHeight}
	if err := out.Render(r.Context(), chart.NewDoughnut(data)); err != nil {
		log.FromContext(r.Context()).LogError(r.Context(), "Failed to draw chart", err, log.OpRender, nil)
		writeError(w, r, http.StatusInternalServerError, "could not draw chart")
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := render.DashboardData{
		Today: s.now().Format(dateLayout),
		Flash: q.Get("flash"),
	}
	if q.Get("error") != "" {
		view.Flash, view.FlashError = q.Get("error"), true
	}

	p, err := parsePeriod(q)
	if err != nil {
		view.Flash, view.FlashError = err.Error(), true
		p = core.Period{}
	}
	view.PeriodLabel = periodLabel(p)

	data, total, err := s.chartData(r.Context(), p)
	if err != nil {
		log.FromContext(r.Context()).LogError(r.Context(), "Failed to aggregate expenses", err, log.OpAggregate, nil)
		http.Error(w, "could not load expenses", http.StatusInternalServerError)
		return
	}
	view.Total = total.String()
	view.Chart = render.NewPageData(chart.NewDoughnut(data))

	var buf bytes.Buffer
	if err := render.WriteDashboard(&buf, view); err != nil {
		log.FromContext(r.Context()).LogError(r.Context(), "Failed to render dashboard", err, log.OpRender, nil)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

type createExpenseResponse struct {
	Ref string `json:"ref"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		s.expenseRejected(w, r, "invalid form")
		return
	}

	e, err := parseExpenseForm(r.PostForm, s.now())
	if err != nil {
		s.expenseRejected(w, r, validationMessage(err))
		return
	}

	ctx := r.Context()
	logger := log.FromContext(ctx)

	ref, err := s.expenses.Record(ctx, e)
	if err != nil {
		logger.LogError(ctx, "Failed to save expense", err, log.OpAppend, nil)
		if wantsJSON(r) {
			writeError(w, r, http.StatusInternalServerError, "could not save expense")
			return
		}
		http.Error(w, "could not save expense", http.StatusInternalServerError)
		return
	}
	logger.InfoContext(ctx, "Expense recorded",
		log.FieldCategory, e.Category,
		log.FieldAmountCents, e.Amount.Cents,
		"ref", ref)

	if wantsJSON(r) {
		writeJSON(w, r, http.StatusCreated, createExpenseResponse{Ref: ref})
		return
	}
	v := url.Values{}
	v.Set("year", strconv.Itoa(e.Date.Year()))
	v.Set("month", strconv.Itoa(int(e.Date.Month())))
	v.Set("flash", "Gasto añadido: "+e.Description+" "+e.Amount.String())
	http.Redirect(w, r, "/?"+v.Encode(), http.StatusSeeOther)
}

func (s *Server) expenseRejected(w http.ResponseWriter, r *http.Request, msg string) {
	if wantsJSON(r) {
		writeError(w, r, http.StatusBadRequest, msg)
		return
	}
	http.Redirect(w, r, "/?"+url.Values{"error": {msg}}.Encode(), http.StatusSeeOther)
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidDate):
		return "Fecha no válida"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Importe no válido"
	case errors.Is(err, core.ErrEmptyDescription):
		return "Falta la descripción"
	case errors.Is(err, core.ErrEmptyCategory):
		return "Falta la categoría"
	default:
		return "Datos no válidos"
	}
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.store.(Pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Error: err.Error()})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
}
