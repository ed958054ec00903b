package http

import (
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

const (
	msgAdded      = "Transaction added successfully!"
	msgNoneFound  = "No transactions found in the given date range."
	msgSaveFailed = "Could not save the transaction. Please try again."
	msgLoadFailed = "Could not load transactions."
)

type notice struct {
	Kind string // success, warning, error
	Text string
}

type rowView struct {
	Date        string
	Amount      string
	Category    string
	Description string
}

type viewData struct {
	Rows    []rowView
	Income  string
	Expense string
	Net     string
	Chart   chartData
	Plotted bool
}

type pageData struct {
	Title      string
	Active     string
	Notice     *notice
	Form       transactionInput
	Errors     fieldErrors
	Categories []core.Category
	Start      string
	End        string
	View       *viewData
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			append(applog.NewFields().WithOperation(applog.OpRender).WithError(err), "template", name)...)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", pageData{Title: "Home", Active: "home"})
}

func (s *Server) addPage() pageData {
	return pageData{
		Title:      "Add New Transaction",
		Active:     "add",
		Categories: core.Categories(),
		Form: transactionInput{
			Date:     today().Key(),
			Category: string(core.Income),
		},
	}
}

func (s *Server) handleAddForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "add.html", s.addPage())
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	page := s.addPage()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		page.Notice = &notice{Kind: "error", Text: "Invalid form submission."}
		s.render(w, r, http.StatusBadRequest, "add.html", page)
		return
	}

	in := readTransactionInput(func(k string) string { return sanitizeInput(r.PostForm.Get(k)) })
	t, errs := in.parse()
	if errs != nil {
		logger.WarnContext(ctx, "Transaction form rejected", applog.FieldError, errs.Error())
		page.Form = in
		page.Errors = errs
		s.render(w, r, http.StatusUnprocessableEntity, "add.html", page)
		return
	}

	if err := s.record(ctx, t); err != nil {
		logger.ErrorContext(ctx, "Transaction append failed",
			applog.NewFields().WithOperation(applog.OpRecord).WithError(err)...)
		page.Form = in
		page.Notice = &notice{Kind: "error", Text: msgSaveFailed}
		s.render(w, r, http.StatusInternalServerError, "add.html", page)
		return
	}

	page.Notice = &notice{Kind: "success", Text: msgAdded}
	s.render(w, r, http.StatusOK, "add.html", page)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	page := pageData{Title: "View Transactions", Active: "view"}

	start, end, ok, err := parseRange(r.URL.Query())
	if !ok {
		day := today().Key()
		page.Start, page.End = day, day
		s.render(w, r, http.StatusOK, "view.html", page)
		return
	}
	page.Start, page.End = r.URL.Query().Get("start"), r.URL.Query().Get("end")
	if err != nil {
		page.Notice = &notice{Kind: "error", Text: "Enter dates as YYYY-MM-DD or DD-MM-YYYY."}
		s.render(w, r, http.StatusBadRequest, "view.html", page)
		return
	}
	page.Start, page.End = start.Key(), end.Key()

	rep, err := s.report(ctx, start, end)
	if err != nil {
		logger.ErrorContext(ctx, "Report failed",
			applog.NewFields().WithOperation(applog.OpQuery).WithRange(start.String(), end.String()).WithError(err)...)
		page.Notice = &notice{Kind: "error", Text: msgLoadFailed}
		s.render(w, r, http.StatusInternalServerError, "view.html", page)
		return
	}

	if len(rep.Rows) == 0 {
		page.Notice = &notice{Kind: "warning", Text: msgNoneFound}
		s.render(w, r, http.StatusOK, "view.html", page)
		return
	}

	page.Notice = &notice{Kind: "success", Text: "Transactions from " + start.String() + " to " + end.String() + ":"}
	page.View = buildView(rep)
	s.render(w, r, http.StatusOK, "view.html", page)
}

func buildView(rep services.Report) *viewData {
	v := &viewData{
		Rows:    make([]rowView, 0, len(rep.Rows)),
		Income:  core.FormatDollars(rep.Summary.Income),
		Expense: core.FormatDollars(rep.Summary.Expense),
		Net:     core.FormatDollars(rep.Summary.Net),
	}
	for _, t := range rep.Rows {
		v.Rows = append(v.Rows, rowView{
			Date:        t.Date.String(),
			Amount:      core.FormatAmount(t.Amount),
			Category:    string(t.Category),
			Description: t.Description,
		})
	}
	v.Chart, v.Plotted = buildChart(rep.Series)
	return v
}
