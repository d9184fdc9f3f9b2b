package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finsight/internal/core"
	applog "finsight/internal/log"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type transactionPayload struct {
	ID        string  `json:"id,omitempty"`
	Amount    float64 `json:"amount"`
	Direction string  `json:"direction"`
	Category  string  `json:"category"`
	Date      string  `json:"date"`
	Note      string  `json:"note,omitempty"`
}

func toTransactionPayload(t core.Transaction) transactionPayload {
	return transactionPayload{
		ID:        t.ID.String(),
		Amount:    t.Amount.Amount(),
		Direction: string(t.Direction),
		Category:  string(t.Category),
		Date:      t.Date.Format(dateLayout),
		Note:      t.Note,
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionPayload
	if !decodeJSON(w, r, &req) {
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}

	t := core.Transaction{
		Amount:    core.MoneyFromAmount(req.Amount),
		Direction: core.Direction(req.Direction),
		Category:  core.Category(req.Category),
		Date:      date,
		Note:      strings.TrimSpace(req.Note),
	}

	created, err := s.transactions.CreateTransaction(r.Context(), t)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		applog.NewFields().
			WithTransaction(created.ID.String(), created.Amount.Cents, string(created.Direction), string(created.Category)).
			WithOperation(applog.OpCreate).
			ToSlice()...)

	s.invalidateDerived()
	writeJSON(w, http.StatusCreated, toTransactionPayload(created))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	key := fmt.Sprintf("transactions:%d:%d", year, month)
	entries, hit := s.listCache.Get(key)
	if !hit {
		var err error
		entries, err = s.transactions.ListTransactions(r.Context(), year, month)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		s.listCache.Set(key, entries)
	}

	out := make([]transactionPayload, 0, len(entries))
	for _, t := range entries {
		out = append(out, toTransactionPayload(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction ID")
		return
	}

	if err := s.transactions.DeleteTransaction(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusNoContent, nil)
}

type profilePayload struct {
	CurrencySymbol  string  `json:"currency_symbol"`
	MonthlyIncome   float64 `json:"monthly_income"`
	MonthlyBudget   float64 `json:"monthly_budget"`
	Goal            string  `json:"goal"`
	PrimaryCategory string  `json:"primary_category,omitempty"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.insights.Profile(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profilePayload{
		CurrencySymbol:  profile.CurrencySymbol,
		MonthlyIncome:   profile.MonthlyIncome.Amount(),
		MonthlyBudget:   profile.MonthlyBudget.Amount(),
		Goal:            profile.GoalLabel,
		PrimaryCategory: string(profile.PrimaryCategory),
	})
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var req profilePayload
	if !decodeJSON(w, r, &req) {
		return
	}

	profile := core.Profile{
		CurrencySymbol:  strings.TrimSpace(req.CurrencySymbol),
		MonthlyIncome:   core.MoneyFromAmount(req.MonthlyIncome),
		MonthlyBudget:   core.MoneyFromAmount(req.MonthlyBudget),
		GoalLabel:       strings.TrimSpace(req.Goal),
		PrimaryCategory: core.Category(req.PrimaryCategory),
	}

	if err := s.insights.SaveProfile(r.Context(), profile); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.invalidateDerived()
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleAllocations(w http.ResponseWriter, r *http.Request) {
	key := s.monthKey("allocations")
	allocations, hit := s.allocationsCache.Get(key)
	if !hit {
		var err error
		allocations, err = s.insights.Allocations(r.Context(), s.now())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		s.allocationsCache.Set(key, allocations)
	}
	writeJSON(w, http.StatusOK, allocations)
}

type savingsPlanRequest struct {
	TargetAmount float64 `json:"target_amount"`
	Months       int     `json:"months"`
}

func (s *Server) handleSavingsPlan(w http.ResponseWriter, r *http.Request) {
	var req savingsPlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Months <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "months must be positive")
		return
	}
	if req.TargetAmount <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "target amount must be positive")
		return
	}

	plan, err := s.insights.SavingsPlan(r.Context(), req.TargetAmount, req.Months)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	key := s.monthKey("insights")
	observations, hit := s.insightsCache.Get(key)
	if !hit {
		var err error
		observations, err = s.insights.Insights(r.Context(), s.now())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		s.insightsCache.Set(key, observations)
	}
	writeJSON(w, http.StatusOK, map[string][]string{"insights": observations})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	months := 3
	if v := strings.TrimSpace(r.URL.Query().Get("months")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 24 {
			writeError(w, http.StatusBadRequest, "months must be between 1 and 24")
			return
		}
		months = parsed
	}

	key := s.monthKey(fmt.Sprintf("trends:%d", months))
	trends, hit := s.trendsCache.Get(key)
	if !hit {
		var err error
		trends, err = s.insights.Trends(r.Context(), months, s.now())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		s.trendsCache.Set(key, trends)
	}
	writeJSON(w, http.StatusOK, trends)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	key := s.monthKey("goal")
	status, hit := s.goalCache.Get(key)
	if !hit {
		var err error
		status, err = s.insights.GoalProgress(r.Context(), s.now())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		s.goalCache.Set(key, status)
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	current, ok := parseFloatParam(w, r, "current", 0)
	if !ok {
		return
	}
	monthly, ok := parseFloatParam(w, r, "monthly", 0)
	if !ok {
		return
	}
	rate, ok := parseFloatParam(w, r, "rate", 0)
	if !ok {
		return
	}

	months := 12
	if v := strings.TrimSpace(r.URL.Query().Get("months")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 600 {
			writeError(w, http.StatusBadRequest, "months must be between 1 and 600")
			return
		}
		months = parsed
	}

	balances := s.insights.Projection(current, monthly, rate, months)
	writeJSON(w, http.StatusOK, map[string][]float64{"balances": balances})
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply := s.insights.Chat(r.Context(), message, s.now())
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	fmt.Fprintf(w, "# HELP finsight_http_requests_total Total HTTP requests received.\n")
	fmt.Fprintf(w, "# TYPE finsight_http_requests_total counter\n")
	fmt.Fprintf(w, "finsight_http_requests_total %d\n", traceMetrics.TotalRequests)
	fmt.Fprintf(w, "# HELP finsight_http_response_time_microseconds Most recent response time.\n")
	fmt.Fprintf(w, "# TYPE finsight_http_response_time_microseconds gauge\n")
	fmt.Fprintf(w, "finsight_http_response_time_microseconds %d\n", traceMetrics.AverageResponseTime)
	fmt.Fprintf(w, "# HELP finsight_suspicious_requests_total Requests matching scanner signatures.\n")
	fmt.Fprintf(w, "# TYPE finsight_suspicious_requests_total counter\n")
	fmt.Fprintf(w, "finsight_suspicious_requests_total %d\n", securityMetrics.SuspiciousRequests)
	fmt.Fprintf(w, "# HELP finsight_ratelimit_active_clients Clients tracked by the rate limiter.\n")
	fmt.Fprintf(w, "# TYPE finsight_ratelimit_active_clients gauge\n")
	fmt.Fprintf(w, "finsight_ratelimit_active_clients %d\n", s.limiter.ActiveClients())
	fmt.Fprintf(w, "# HELP finsight_cache_entries Entries held per response cache.\n")
	fmt.Fprintf(w, "# TYPE finsight_cache_entries gauge\n")
	fmt.Fprintf(w, "finsight_cache_entries{cache=\"transactions\"} %d\n", s.listCache.Size())
	fmt.Fprintf(w, "finsight_cache_entries{cache=\"allocations\"} %d\n", s.allocationsCache.Size())
	fmt.Fprintf(w, "finsight_cache_entries{cache=\"insights\"} %d\n", s.insightsCache.Size())
	fmt.Fprintf(w, "finsight_cache_entries{cache=\"trends\"} %d\n", s.trendsCache.Size())
	fmt.Fprintf(w, "finsight_cache_entries{cache=\"goal\"} %d\n", s.goalCache.Size())
}

// parseYearMonth reads the optional year/month filters. Both absent means
// the whole ledger; a month filter needs a year to be meaningful.
func parseYearMonth(w http.ResponseWriter, r *http.Request) (year, month int, ok bool) {
	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1970 || parsed > 9999 {
			writeError(w, http.StatusBadRequest, "invalid year")
			return 0, 0, false
		}
		year = parsed
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			writeError(w, http.StatusBadRequest, "invalid month")
			return 0, 0, false
		}
		if year == 0 {
			writeError(w, http.StatusBadRequest, "month filter requires a year")
			return 0, 0, false
		}
		month = parsed
	}
	return year, month, true
}

func parseFloatParam(w http.ResponseWriter, r *http.Request, name string, fallback float64) (float64, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return fallback, true
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return parsed, true
}
