package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"tracker/internal/core"
)

type accountView struct {
	ID       string
	Name     string
	Selected bool
}

type historyRow struct {
	Timestamp string
	Deposit   string
	Spent     string
	Saved     string
	Wants     string
	Balance   string
	Note      string
}

type summaryView struct {
	Spent string
	Saved string
	Wants string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	selected := s.svc.Selected()
	balance := s.svc.Balance(selected)
	data := struct {
		Accounts      []accountView
		SelectedID    string
		AccountName   string
		Balance       string
		SpendDisabled bool
		History       []historyRow
		Summary       summaryView
	}{
		Accounts:      s.accountViews(selected),
		SelectedID:    selected,
		Balance:       formatAmount(balance),
		SpendDisabled: balance.Cents <= 0,
		History:       s.historyRows(selected),
		Summary:       s.summaryView(selected),
	}
	if acc, ok := s.svc.Account(selected); ok {
		data.AccountName = acc.Name
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleAddAccount(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	name := sanitizeInput(r.Form.Get("name"))
	if name == "" {
		// Blank submissions are ignored rather than rejected.
		w.WriteHeader(http.StatusOK)
		return
	}

	acc, err := s.svc.AddAccount(r.Context(), name)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateName) {
			writeError(w, http.StatusUnprocessableEntity, "An account with that name already exists")
			return
		}
		slog.ErrorContext(r.Context(), "Add account error", "error", err, "name", name)
		writeError(w, http.StatusInternalServerError, "Could not add the account")
		return
	}

	s.invalidateFragments()
	triggerLedgerChanged(w)
	writeSuccess(w, "Added account "+acc.Name)
}

func (s *Server) handleRenameAccount(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	id := strings.TrimSpace(r.Form.Get("id"))
	name := sanitizeInput(r.Form.Get("name"))
	if name == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := s.svc.RenameAccount(r.Context(), id, name); err != nil {
		switch {
		case errors.Is(err, core.ErrDuplicateName):
			writeError(w, http.StatusUnprocessableEntity, "An account with that name already exists")
		case errors.Is(err, core.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "Account not found")
		default:
			slog.ErrorContext(r.Context(), "Rename account error", "error", err, "account_id", id)
			writeError(w, http.StatusInternalServerError, "Could not rename the account")
		}
		return
	}

	s.invalidateFragments()
	triggerLedgerChanged(w)
	writeSuccess(w, "Renamed account to "+name)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	id := strings.TrimSpace(r.Form.Get("id"))
	if err := s.svc.DeleteAccount(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, core.ErrLastAccount):
			writeError(w, http.StatusUnprocessableEntity, "You need at least one account")
		case errors.Is(err, core.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "Account not found")
		default:
			slog.ErrorContext(r.Context(), "Delete account error", "error", err, "account_id", id)
			writeError(w, http.StatusInternalServerError, "Could not delete the account")
		}
		return
	}

	s.invalidateFragments()
	triggerLedgerChanged(w)
	writeSuccess(w, "Account deleted")
}

func (s *Server) handleSelectAccount(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	id := strings.TrimSpace(r.Form.Get("id"))
	if err := s.svc.Select(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}

	triggerLedgerChanged(w)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	accountID := strings.TrimSpace(r.Form.Get("account"))
	if accountID == "" {
		accountID = s.svc.Selected()
	}

	amounts, err := parseAmounts(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid amount")
		return
	}

	// All-zero submissions are a no-op, matching the form's behavior of
	// ignoring an empty entry.
	if amounts.IsZero() {
		w.WriteHeader(http.StatusOK)
		return
	}

	note := sanitizeInput(r.Form.Get("note"))

	tx, err := s.svc.Record(r.Context(), accountID, amounts, note)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInsufficientBalance):
			writeError(w, http.StatusUnprocessableEntity, "Insufficient balance for this transaction")
		case errors.Is(err, core.ErrAccountNotFound):
			writeError(w, http.StatusNotFound, "Account not found")
		case errors.Is(err, core.ErrNegativeAmount):
			writeError(w, http.StatusUnprocessableEntity, "Amounts cannot be negative")
		default:
			slog.ErrorContext(r.Context(), "Record transaction error", "error", err, "account_id", accountID)
			writeError(w, http.StatusInternalServerError, "Could not record the transaction")
		}
		return
	}

	s.invalidateFragments()
	triggerLedgerChanged(w)
	writeSuccess(w, "Recorded. New balance: "+formatAmount(tx.Balance))
}

// handleBalance renders the balance line for the selected (or requested)
// account.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	id := s.accountParam(r)
	data := struct {
		AccountName string
		Balance     string
	}{
		Balance: formatAmount(s.svc.Balance(id)),
	}
	if acc, ok := s.svc.Account(id); ok {
		data.AccountName = acc.Name
	}

	s.renderFragment(w, r, "balance.html", data)
}

// handleEntry renders the transaction entry form. Deposits are always
// allowed; the spent/saved/wants inputs are disabled while the account
// balance is not positive, so there is nothing to overdraw from.
func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	id := s.accountParam(r)
	balance := s.svc.Balance(id)
	data := struct {
		Balance       string
		SpendDisabled bool
	}{
		Balance:       formatAmount(balance),
		SpendDisabled: balance.Cents <= 0,
	}

	s.renderFragment(w, r, "entry.html", data)
}

// handlePreview computes the balance the pending form entry would produce
// without recording anything.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	id := s.accountParam(r)
	amounts, err := parseAmountsQuery(r)
	if err != nil {
		_, _ = w.Write([]byte(`<span class="preview preview-error">Invalid amount</span>`))
		return
	}

	preview := s.svc.PreviewBalance(id, amounts)
	class := "preview"
	if preview.Cents < 0 {
		class = "preview preview-negative"
	}
	_, _ = w.Write([]byte(`<span class="` + class + `">` + template.HTMLEscapeString(formatAmount(preview)) + `</span>`))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	id := s.accountParam(r)
	if html, found := s.historyCache.Get(id); found {
		_, _ = w.Write([]byte(html))
		return
	}

	data := struct {
		History []historyRow
	}{History: s.historyRows(id)}

	html, ok := s.renderToString(r, "history.html", data)
	if !ok {
		_, _ = w.Write([]byte(`<div class="placeholder">Could not load history</div>`))
		return
	}
	s.historyCache.Set(id, html)
	_, _ = w.Write([]byte(html))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	id := s.accountParam(r)
	if html, found := s.summaryCache.Get(id); found {
		_, _ = w.Write([]byte(html))
		return
	}

	data := struct {
		Summary summaryView
	}{Summary: s.summaryView(id)}

	html, ok := s.renderToString(r, "summary.html", data)
	if !ok {
		_, _ = w.Write([]byte(`<div class="placeholder">Could not load summary</div>`))
		return
	}
	s.summaryCache.Set(id, html)
	_, _ = w.Write([]byte(html))
}

func (s *Server) accountParam(r *http.Request) string {
	if id := strings.TrimSpace(r.URL.Query().Get("account")); id != "" {
		return id
	}
	return s.svc.Selected()
}

func (s *Server) accountViews(selected string) []accountView {
	accounts := s.svc.Accounts()
	out := make([]accountView, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, accountView{
			ID:       acc.ID,
			Name:     acc.Name,
			Selected: acc.ID == selected,
		})
	}
	return out
}

func (s *Server) historyRows(id string) []historyRow {
	txs := s.svc.Transactions(id)
	rows := make([]historyRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, historyRow{
			Timestamp: tx.Timestamp,
			Deposit:   formatOrEmpty(tx.Deposit),
			Spent:     formatOrEmpty(tx.Spent),
			Saved:     formatOrEmpty(tx.Saved),
			Wants:     formatOrEmpty(tx.Wants),
			Balance:   formatAmount(tx.Balance),
			Note:      tx.Note,
		})
	}
	return rows
}

func (s *Server) summaryView(id string) summaryView {
	sum := s.svc.Summary(id)
	return summaryView{
		Spent: formatAmount(sum.Spent),
		Saved: formatAmount(sum.Saved),
		Wants: formatAmount(sum.Wants),
	}
}
