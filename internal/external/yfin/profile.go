package yfin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Profile is the public listing page identity for a ticker
type Profile struct {
	Ticker string
	Name   string
	Sector string
}

// FetchProfile scrapes the quote profile page. Used by ticker admin to
// confirm a symbol exists and to pick up its display name.
func (c *Client) FetchProfile(ctx context.Context, ticker string) (*Profile, error) {
	endpoint := fmt.Sprintf("%s/quote/%s/profile", c.quoteBaseURL, url.PathEscape(ticker))

	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("profile request for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("profile for %s: unknown ticker", ticker)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile request for %s: unexpected status %d", ticker, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse profile for %s: %w", ticker, err)
	}

	profile := &Profile{Ticker: ticker}

	// The h1 carries "Name (TICKER)"; strip the symbol suffix.
	heading := strings.TrimSpace(doc.Find("h1").First().Text())
	if idx := strings.LastIndex(heading, "("); idx > 0 {
		heading = strings.TrimSpace(heading[:idx])
	}
	profile.Name = heading

	doc.Find("dt").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(s.Text()), "sector:") {
			profile.Sector = strings.TrimSpace(s.Next().Text())
			return false
		}
		return true
	})

	if profile.Name == "" {
		return nil, fmt.Errorf("profile for %s: name not found", ticker)
	}

	return profile, nil
}
