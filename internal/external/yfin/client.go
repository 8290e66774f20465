package yfin

import (
	"github.com/wonny/hegemony/pkg/config"
	"github.com/wonny/hegemony/pkg/httputil"
	"github.com/wonny/hegemony/pkg/logger"
)

// Client talks to the Yahoo Finance public endpoints. All quote,
// chart, and profile fetches go through this client.
type Client struct {
	httpClient   *httputil.Client
	baseURL      string
	quoteBaseURL string
	logger       *logger.Logger
}

// NewClient creates a new provider client
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient:   httpClient,
		baseURL:      cfg.Provider.BaseURL,
		quoteBaseURL: cfg.Provider.QuoteBaseURL,
		logger:       log.WithField("module", "yfin"),
	}
}

// rawValue is Yahoo's {"raw": 1.23, "fmt": "1.23"} number wrapper
type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (v rawValue) float() *float64 {
	return v.Raw
}

func (v rawValue) int() *int64 {
	if v.Raw == nil {
		return nil
	}
	i := int64(*v.Raw)
	return &i
}

func (v rawValue) intVal() *int {
	if v.Raw == nil {
		return nil
	}
	i := int(*v.Raw)
	return &i
}
