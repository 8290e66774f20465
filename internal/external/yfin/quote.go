package yfin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/hegemony/internal/contracts"
)

// Quote is one ticker's current market snapshot plus fundamental
// metrics, all from a single quoteSummary call.
type Quote struct {
	Ticker       string
	Snapshot     contracts.Snapshot
	Fundamentals contracts.Fundamentals
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	Price struct {
		MarketCap                  rawValue `json:"marketCap"`
		RegularMarketPrice         rawValue `json:"regularMarketPrice"`
		RegularMarketChangePercent rawValue `json:"regularMarketChangePercent"`
		RegularMarketVolume        rawValue `json:"regularMarketVolume"`
		RegularMarketDayHigh       rawValue `json:"regularMarketDayHigh"`
		RegularMarketDayLow        rawValue `json:"regularMarketDayLow"`
	} `json:"price"`
	SummaryDetail struct {
		FiftyTwoWeekHigh rawValue `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow  rawValue `json:"fiftyTwoWeekLow"`
		AverageVolume    rawValue `json:"averageVolume"`
		TrailingPE       rawValue `json:"trailingPE"`
	} `json:"summaryDetail"`
	FinancialData struct {
		RevenueGrowth           rawValue `json:"revenueGrowth"`
		EarningsGrowth          rawValue `json:"earningsGrowth"`
		OperatingMargins        rawValue `json:"operatingMargins"`
		ReturnOnEquity          rawValue `json:"returnOnEquity"`
		RecommendationKey       string   `json:"recommendationKey"`
		NumberOfAnalystOpinions rawValue `json:"numberOfAnalystOpinions"`
		TargetMeanPrice         rawValue `json:"targetMeanPrice"`
		FreeCashflow            rawValue `json:"freeCashflow"`
		DebtToEquity            rawValue `json:"debtToEquity"`
	} `json:"financialData"`
	DefaultKeyStatistics struct {
		Beta              rawValue `json:"beta"`
		PegRatio          rawValue `json:"pegRatio"`
		SharesOutstanding rawValue `json:"sharesOutstanding"`
	} `json:"defaultKeyStatistics"`
}

// FetchQuote fetches the current snapshot and fundamentals for one
// ticker. A quote without a market cap is treated as no data.
func (c *Client) FetchQuote(ctx context.Context, ticker string, date time.Time) (*Quote, error) {
	endpoint := fmt.Sprintf(
		"%s/v10/finance/quoteSummary/%s?modules=price,summaryDetail,financialData,defaultKeyStatistics",
		c.baseURL, url.PathEscape(ticker),
	)

	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("quote request for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request for %s: unexpected status %d", ticker, resp.StatusCode)
	}

	var payload quoteSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode quote for %s: %w", ticker, err)
	}

	if payload.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quote for %s: %s", ticker, payload.QuoteSummary.Error.Description)
	}
	if len(payload.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("quote for %s: empty result", ticker)
	}

	r := payload.QuoteSummary.Result[0]
	if r.Price.MarketCap.Raw == nil {
		return nil, fmt.Errorf("quote for %s: no market cap", ticker)
	}

	quote := &Quote{
		Ticker: ticker,
		Snapshot: contracts.Snapshot{
			Ticker:      ticker,
			Date:        date,
			MarketCap:   r.Price.MarketCap.int(),
			Price:       r.Price.RegularMarketPrice.float(),
			PriceChange: r.Price.RegularMarketChangePercent.float(),
			Week52High:  r.SummaryDetail.FiftyTwoWeekHigh.float(),
			Week52Low:   r.SummaryDetail.FiftyTwoWeekLow.float(),
			DayHigh:     r.Price.RegularMarketDayHigh.float(),
			DayLow:      r.Price.RegularMarketDayLow.float(),
			Volume:      r.Price.RegularMarketVolume.int(),
			AvgVolume:   r.SummaryDetail.AverageVolume.int(),
			PERatio:     r.SummaryDetail.TrailingPE.float(),
			PEGRatio:    r.DefaultKeyStatistics.PegRatio.float(),
		},
		Fundamentals: contracts.Fundamentals{
			RevenueGrowth:   r.FinancialData.RevenueGrowth.float(),
			EarningsGrowth:  r.FinancialData.EarningsGrowth.float(),
			OperatingMargin: r.FinancialData.OperatingMargins.float(),
			ReturnOnEquity:  r.FinancialData.ReturnOnEquity.float(),
			AnalystCount:    r.FinancialData.NumberOfAnalystOpinions.intVal(),
			TargetMeanPrice: r.FinancialData.TargetMeanPrice.float(),
			FreeCashflow:    r.FinancialData.FreeCashflow.int(),
			Beta:            r.DefaultKeyStatistics.Beta.float(),
			DebtToEquity:    r.FinancialData.DebtToEquity.float(),
		},
	}

	if key := strings.TrimSpace(r.FinancialData.RecommendationKey); key != "" {
		quote.Fundamentals.RecommendationKey = &key
	}

	return quote, nil
}

// FetchSharesOutstanding returns the share count used to reconstruct
// historical market caps during backfill.
func (c *Client) FetchSharesOutstanding(ctx context.Context, ticker string) (*int64, error) {
	endpoint := fmt.Sprintf(
		"%s/v10/finance/quoteSummary/%s?modules=defaultKeyStatistics",
		c.baseURL, url.PathEscape(ticker),
	)

	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("shares request for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shares request for %s: unexpected status %d", ticker, resp.StatusCode)
	}

	var payload quoteSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode shares for %s: %w", ticker, err)
	}
	if len(payload.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("shares for %s: empty result", ticker)
	}

	return payload.QuoteSummary.Result[0].DefaultKeyStatistics.SharesOutstanding.int(), nil
}
