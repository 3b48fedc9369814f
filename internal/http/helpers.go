package http

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"tracker/internal/core"
)

// requirePost enforces the method and parses the form, writing the error
// response itself. Returns false when the handler should stop.
func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Invalid request format</div>`))
		return false
	}
	return true
}

// parseAmounts reads the four amount fields from a POST form.
func parseAmounts(r *http.Request) (core.Amounts, error) {
	return buildAmounts(
		r.Form.Get("deposit"),
		r.Form.Get("spent"),
		r.Form.Get("saved"),
		r.Form.Get("wants"),
	)
}

// parseAmountsQuery reads the four amount fields from query parameters,
// used by the live preview.
func parseAmountsQuery(r *http.Request) (core.Amounts, error) {
	q := r.URL.Query()
	return buildAmounts(
		q.Get("deposit"),
		q.Get("spent"),
		q.Get("saved"),
		q.Get("wants"),
	)
}

func buildAmounts(deposit, spent, saved, wants string) (core.Amounts, error) {
	var a core.Amounts
	var err error

	if a.Deposit, err = core.ParseMoney(deposit); err != nil {
		return core.Amounts{}, fmt.Errorf("deposit: %w", err)
	}
	if a.Spent, err = core.ParseMoney(spent); err != nil {
		return core.Amounts{}, fmt.Errorf("spent: %w", err)
	}
	if a.Saved, err = core.ParseMoney(saved); err != nil {
		return core.Amounts{}, fmt.Errorf("saved: %w", err)
	}
	if a.Wants, err = core.ParseMoney(wants); err != nil {
		return core.Amounts{}, fmt.Errorf("wants: %w", err)
	}
	return a, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// triggerLedgerChanged tells htmx clients to refresh the balance, history,
// and summary fragments.
func triggerLedgerChanged(w http.ResponseWriter) {
	w.Header().Set("HX-Trigger", "ledger:changed")
}

func writeSuccess(w http.ResponseWriter, msg string) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`<div class="error">` + template.HTMLEscapeString(msg) + `</div>`))
}

// renderFragment executes a template straight to the response, degrading
// to a placeholder on failure.
func (s *Server) renderFragment(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		_, _ = w.Write([]byte(`<div class="placeholder">Templates not loaded</div>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", name)
	}
}

// renderToString executes a template into a buffer so the result can be
// cached before writing.
func (s *Server) renderToString(r *http.Request, name string, data any) (string, bool) {
	if s.templates == nil {
		return "", false
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", name)
		return "", false
	}
	return buf.String(), true
}

// formatAmount renders cents as a dollar string, e.g. "$12.34" or
// "-$0.50".
func formatAmount(m core.Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	dollars := cents / 100
	rem := cents % 100
	out := "$" + strconv.FormatInt(dollars, 10) + "." + fmt.Sprintf("%02d", rem)
	if neg {
		return "-" + out
	}
	return out
}

// formatOrEmpty leaves zero amounts blank so history rows only show the
// columns a transaction actually used.
func formatOrEmpty(m core.Money) string {
	if m.Cents == 0 {
		return ""
	}
	return formatAmount(m)
}
