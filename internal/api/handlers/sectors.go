package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/hegemony/internal/contracts"
	"github.com/wonny/hegemony/pkg/logger"
	"github.com/wonny/hegemony/pkg/redis"
)

// SectorHandler serves the sector catalog and per-sector rankings
type SectorHandler struct {
	db     contracts.DB
	cache  *redis.Cache
	logger *logger.Logger
}

// NewSectorHandler creates a new sector handler
func NewSectorHandler(db contracts.DB, cache *redis.Cache, log *logger.Logger) *SectorHandler {
	return &SectorHandler{
		db:     db,
		cache:  cache,
		logger: log,
	}
}

// SectorSummary is one sector catalog entry
type SectorSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	NameEn       *string `json:"nameEn,omitempty"`
	Order        int     `json:"order"`
	Description  *string `json:"description,omitempty"`
	CompanyCount int     `json:"companyCount"`
}

// RankingEntry is one company's position in a sector ranking
type RankingEntry struct {
	Rank          int      `json:"rank"`
	Ticker        string   `json:"ticker"`
	Name          string   `json:"name"`
	SmoothedScore *float64 `json:"smoothedScore"`
	RawScore      *float64 `json:"rawScore"`
	Scale         *float64 `json:"scaleScore"`
	Growth        *float64 `json:"growthScore"`
	Profitability *float64 `json:"profitabilityScore"`
	Sentiment     *float64 `json:"sentimentScore"`
	DataQuality   *float64 `json:"dataQuality"`
	MarketCap     *int64   `json:"marketCap"`
	Price         *float64 `json:"price"`
	PriceChange   *float64 `json:"priceChange"`
}

// GetSectors returns all sectors with member counts
// GET /api/sectors
func (h *SectorHandler) GetSectors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.db.Query(ctx, `
		SELECT s.id, s.name, s.name_en, s."order", s.description,
		       COUNT(sc.ticker) AS company_count
		FROM sectors s
		LEFT JOIN sector_companies sc ON s.id = sc.sector_id
		GROUP BY s.id, s.name, s.name_en, s."order", s.description
		ORDER BY s."order", s.id
	`)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query sectors")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve sectors")
		return
	}
	defer rows.Close()

	sectors := make([]SectorSummary, 0)
	for rows.Next() {
		var s SectorSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.NameEn, &s.Order, &s.Description, &s.CompanyCount); err != nil {
			h.logger.WithError(err).Error("Failed to scan sector")
			respondError(w, http.StatusInternalServerError, "Failed to retrieve sectors")
			return
		}
		sectors = append(sectors, s)
	}
	if err := rows.Err(); err != nil {
		h.logger.WithError(err).Error("Sector rows error")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve sectors")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(sectors),
		"sectors": sectors,
	})
}

// GetRankings returns a sector's companies ordered by rank
// GET /api/sectors/{id}/rankings
func (h *SectorHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sectorID := mux.Vars(r)["id"]

	cacheKey := redis.SectorRankingsKey(sectorID)
	var cached []RankingEntry
	if found, err := h.cache.Get(ctx, cacheKey, &cached); err != nil {
		h.logger.WithError(err).Warn("Rankings cache read failed")
	} else if found {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"sectorId": sectorID,
			"count":    len(cached),
			"rankings": cached,
			"cached":   true,
		})
		return
	}

	rows, err := h.db.Query(ctx, `
		SELECT sc.rank, sc.ticker, c.name,
		       cs.smoothed_score, cs.raw_total_score,
		       cs.scale_score, cs.growth_score, cs.profitability_score, cs.sentiment_score,
		       cs.data_quality,
		       ds.market_cap, ds.price, ds.price_change
		FROM sector_companies sc
		JOIN companies c ON sc.ticker = c.ticker
		LEFT JOIN company_scores cs ON sc.ticker = cs.ticker
		LEFT JOIN daily_snapshots ds ON sc.ticker = ds.ticker
			AND ds.date = (SELECT MAX(date) FROM daily_snapshots)
		WHERE sc.sector_id = $1
		ORDER BY sc.rank
	`, sectorID)
	if err != nil {
		h.logger.WithError(err).WithField("sector", sectorID).Error("Failed to query rankings")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve rankings")
		return
	}
	defer rows.Close()

	rankings := make([]RankingEntry, 0)
	for rows.Next() {
		var e RankingEntry
		err := rows.Scan(
			&e.Rank, &e.Ticker, &e.Name,
			&e.SmoothedScore, &e.RawScore,
			&e.Scale, &e.Growth, &e.Profitability, &e.Sentiment,
			&e.DataQuality,
			&e.MarketCap, &e.Price, &e.PriceChange,
		)
		if err != nil {
			h.logger.WithError(err).Error("Failed to scan ranking entry")
			respondError(w, http.StatusInternalServerError, "Failed to retrieve rankings")
			return
		}
		rankings = append(rankings, e)
	}
	if err := rows.Err(); err != nil {
		h.logger.WithError(err).Error("Ranking rows error")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve rankings")
		return
	}

	if len(rankings) == 0 {
		respondError(w, http.StatusNotFound, "Sector not found or empty: "+sectorID)
		return
	}

	if err := h.cache.Set(ctx, cacheKey, rankings, redis.TTLShort); err != nil {
		h.logger.WithError(err).Warn("Rankings cache write failed")
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sectorId": sectorID,
		"count":    len(rankings),
		"rankings": rankings,
	})
}

// parseDays reads a ?days=N query param with a default and ceiling
func parseDays(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return def
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return def
	}
	if days > max {
		return max
	}
	return days
}
