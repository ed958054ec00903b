package http

import (
	"net/http"
	"net/url"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

type apiTransaction struct {
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type apiSummaryBody struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Net     string `json:"net"`
	Count   int    `json:"count"`
}

type apiPoint struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

type apiSeriesBody struct {
	Income  []apiPoint `json:"income"`
	Expense []apiPoint `json:"expense"`
}

func toAPITransaction(t core.Transaction) apiTransaction {
	return apiTransaction{
		Date:        t.Date.String(),
		Amount:      core.FormatAmount(t.Amount),
		Category:    string(t.Category),
		Description: t.Description,
	}
}

func toAPIPoints(points []core.Point) []apiPoint {
	out := make([]apiPoint, 0, len(points))
	for _, p := range points {
		out = append(out, apiPoint{Date: p.Date.String(), Amount: core.FormatAmount(p.Amount)})
	}
	return out
}

// apiRange parses start and end from the query, writing a 400 on failure.
func apiRange(w http.ResponseWriter, q url.Values) (core.Date, core.Date, bool) {
	start, end, ok, err := parseRange(q)
	if !ok {
		BadRequestError(errMissingRange.Error()).Write(w)
		return core.Date{}, core.Date{}, false
	}
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return core.Date{}, core.Date{}, false
	}
	return start, end, true
}

func (s *Server) apiListTransactions(w http.ResponseWriter, r *http.Request) {
	start, end, ok := apiRange(w, r.URL.Query())
	if !ok {
		return
	}
	rep, err := s.report(r.Context(), start, end)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Transaction listing failed",
			applog.NewFields().WithOperation(applog.OpQuery).WithRange(start.String(), end.String()).WithError(err)...)
		InternalServerError("failed to read transactions").Write(w)
		return
	}
	out := make([]apiTransaction, 0, len(rep.Rows))
	for _, t := range rep.Rows {
		out = append(out, toAPITransaction(t))
	}
	NewResponse().JSON(out).Write(w)
}

func (s *Server) apiSummary(w http.ResponseWriter, r *http.Request) {
	start, end, ok := apiRange(w, r.URL.Query())
	if !ok {
		return
	}
	rep, err := s.report(r.Context(), start, end)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Summary failed",
			applog.NewFields().WithOperation(applog.OpQuery).WithRange(start.String(), end.String()).WithError(err)...)
		InternalServerError("failed to summarize transactions").Write(w)
		return
	}
	NewResponse().JSON(apiSummaryBody{
		Start:   start.String(),
		End:     end.String(),
		Income:  core.FormatAmount(rep.Summary.Income),
		Expense: core.FormatAmount(rep.Summary.Expense),
		Net:     core.FormatAmount(rep.Summary.Net),
		Count:   rep.Summary.Count,
	}).Write(w)
}

func (s *Server) apiSeries(w http.ResponseWriter, r *http.Request) {
	start, end, ok := apiRange(w, r.URL.Query())
	if !ok {
		return
	}
	rep, err := s.report(r.Context(), start, end)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Series failed",
			applog.NewFields().WithOperation(applog.OpQuery).WithRange(start.String(), end.String()).WithError(err)...)
		InternalServerError("failed to build series").Write(w)
		return
	}
	NewResponse().JSON(apiSeriesBody{
		Income:  toAPIPoints(rep.Series.Income),
		Expense: toAPIPoints(rep.Series.Expense),
	}).Write(w)
}

func (s *Server) apiCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := NewRequestBodyParser(r)
	if err := p.Err(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	t, errs := readTransactionInput(p.Get).parse()
	if errs != nil {
		ValidationError(errs).Write(w)
		return
	}

	if err := s.record(ctx, t); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Transaction append failed",
			applog.NewFields().WithOperation(applog.OpRecord).WithError(err)...)
		InternalServerError("failed to save transaction").Write(w)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(toAPITransaction(t)).Write(w)
}
