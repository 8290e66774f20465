package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"github.com/wonny/hegemony/internal/contracts"
	"github.com/wonny/hegemony/pkg/logger"
	"github.com/wonny/hegemony/pkg/redis"
)

// CompanyHandler serves per-company score detail and history
type CompanyHandler struct {
	db     contracts.DB
	cache  *redis.Cache
	logger *logger.Logger
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(db contracts.DB, cache *redis.Cache, log *logger.Logger) *CompanyHandler {
	return &CompanyHandler{
		db:     db,
		cache:  cache,
		logger: log,
	}
}

// ScoreDetail is the full current score record for one company
type ScoreDetail struct {
	Ticker          string     `json:"ticker"`
	Name            string     `json:"name"`
	SmoothedScore   *float64   `json:"smoothedScore"`
	RawScore        *float64   `json:"rawScore"`
	Scale           *float64   `json:"scaleScore"`
	Growth          *float64   `json:"growthScore"`
	Profitability   *float64   `json:"profitabilityScore"`
	Sentiment       *float64   `json:"sentimentScore"`
	DataQuality     *float64   `json:"dataQuality"`
	RevenueGrowth   *float64   `json:"revenueGrowth"`
	EarningsGrowth  *float64   `json:"earningsGrowth"`
	OperatingMargin *float64   `json:"operatingMargin"`
	ReturnOnEquity  *float64   `json:"returnOnEquity"`
	Recommendation  *string    `json:"recommendation"`
	TargetMeanPrice *float64   `json:"targetMeanPrice"`
	ScoreUpdatedAt  *time.Time `json:"scoreUpdatedAt"`
}

// HistoryEntry is one score history point for charting
type HistoryEntry struct {
	Date          string  `json:"date"`
	RawScore      float64 `json:"rawScore"`
	SmoothedScore float64 `json:"smoothedScore"`
	Scale         float64 `json:"scaleScore"`
	Growth        float64 `json:"growthScore"`
	Profitability float64 `json:"profitabilityScore"`
	Sentiment     float64 `json:"sentimentScore"`
}

// GetScore returns a company's current score breakdown
// GET /api/companies/{ticker}/score
func (h *CompanyHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := mux.Vars(r)["ticker"]

	cacheKey := redis.CompanyScoreKey(ticker)
	var cached ScoreDetail
	if found, err := h.cache.Get(ctx, cacheKey, &cached); err != nil {
		h.logger.WithError(err).Warn("Score cache read failed")
	} else if found {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	var d ScoreDetail
	err := h.db.QueryRow(ctx, `
		SELECT c.ticker, c.name,
		       cs.smoothed_score, cs.raw_total_score,
		       cs.scale_score, cs.growth_score, cs.profitability_score, cs.sentiment_score,
		       cs.data_quality,
		       cs.revenue_growth, cs.earnings_growth, cs.operating_margin, cs.return_on_equity,
		       cs.recommendation_key, cs.target_mean_price, cs.score_updated_at
		FROM companies c
		LEFT JOIN company_scores cs ON c.ticker = cs.ticker
		WHERE c.ticker = $1
	`, ticker).Scan(
		&d.Ticker, &d.Name,
		&d.SmoothedScore, &d.RawScore,
		&d.Scale, &d.Growth, &d.Profitability, &d.Sentiment,
		&d.DataQuality,
		&d.RevenueGrowth, &d.EarningsGrowth, &d.OperatingMargin, &d.ReturnOnEquity,
		&d.Recommendation, &d.TargetMeanPrice, &d.ScoreUpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		respondError(w, http.StatusNotFound, "Unknown ticker: "+ticker)
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to query score")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve score")
		return
	}

	if err := h.cache.Set(ctx, cacheKey, d, redis.TTLShort); err != nil {
		h.logger.WithError(err).Warn("Score cache write failed")
	}

	respondJSON(w, http.StatusOK, d)
}

// GetHistory returns a company's score history, newest last
// GET /api/companies/{ticker}/history?days=N
func (h *CompanyHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ticker := mux.Vars(r)["ticker"]
	days := parseDays(r, 30, 90)

	cacheKey := redis.ScoreHistoryKey(ticker, days)
	var cached []HistoryEntry
	if found, err := h.cache.Get(ctx, cacheKey, &cached); err != nil {
		h.logger.WithError(err).Warn("History cache read failed")
	} else if found {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"ticker":  ticker,
			"days":    days,
			"count":   len(cached),
			"history": cached,
		})
		return
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := h.db.Query(ctx, `
		SELECT date, raw_total_score, smoothed_score,
		       scale_score, growth_score, profitability_score, sentiment_score
		FROM score_history
		WHERE ticker = $1 AND date >= $2
		ORDER BY date
	`, ticker, since)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to query history")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}
	defer rows.Close()

	history := make([]HistoryEntry, 0)
	for rows.Next() {
		var e HistoryEntry
		var date time.Time
		err := rows.Scan(&date, &e.RawScore, &e.SmoothedScore,
			&e.Scale, &e.Growth, &e.Profitability, &e.Sentiment)
		if err != nil {
			h.logger.WithError(err).Error("Failed to scan history entry")
			respondError(w, http.StatusInternalServerError, "Failed to retrieve history")
			return
		}
		e.Date = date.Format("2006-01-02")
		history = append(history, e)
	}
	if err := rows.Err(); err != nil {
		h.logger.WithError(err).Error("History rows error")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	if err := h.cache.Set(ctx, cacheKey, history, redis.TTLMedium); err != nil {
		h.logger.WithError(err).Warn("History cache write failed")
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  ticker,
		"days":    days,
		"count":   len(history),
		"history": history,
	})
}
