package scan

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/singh-automation/winscope/internal/models"
)

// ForecastFetcher scrapes agency procurement-forecast pages configured in
// sources.yaml. Forecast rows are not discrete bids yet, so records carry
// type "forecast" and no close date. Query terms do not apply; the pages
// are fixed listings.
type ForecastFetcher struct {
	Sources        []ForecastSource
	UserAgent      string
	RequestTimeout time.Duration
	MaxBodySize    int
}

func NewForecastFetcher(sources []ForecastSource) *ForecastFetcher {
	return &ForecastFetcher{
		Sources:        sources,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		RequestTimeout: 30 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
	}
}

func (f *ForecastFetcher) Name() string { return "forecast" }

func (f *ForecastFetcher) Fetch(ctx context.Context, _ []string, p Params) ([]models.Opportunity, error) {
	active := 0
	failed := 0
	var firstErr error
	var out []models.Opportunity
	seen := make(map[string]struct{})

	for _, src := range f.Sources {
		if !src.Active {
			continue
		}
		active++

		if err := ctx.Err(); err != nil {
			return out, nil
		}

		opps, err := f.scrapeSource(ctx, src, p.PerTermLimit)
		if err != nil {
			log.Printf("[Forecast] source %q failed: %v", src.ID, err)
			failed++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		for _, opp := range opps {
			if _, ok := seen[opp.ID]; ok {
				continue
			}
			seen[opp.ID] = struct{}{}
			out = append(out, opp)
		}
	}

	if active > 0 && failed == active {
		return nil, fmt.Errorf("all %d forecast sources failed: %w", failed, firstErr)
	}
	return out, nil
}

func (f *ForecastFetcher) scrapeSource(ctx context.Context, src ForecastSource, limit int) ([]models.Opportunity, error) {
	c := colly.NewCollector(
		colly.UserAgent(f.UserAgent),
		colly.MaxBodySize(f.MaxBodySize),
	)
	c.SetRequestTimeout(f.RequestTimeout)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	linkAttr := src.Selectors.LinkAttr
	if linkAttr == "" {
		linkAttr = "href"
	}

	var opportunities []models.Opportunity
	var scrapeErr error

	c.OnHTML(src.Selectors.Container, func(e *colly.HTMLElement) {
		if limit > 0 && len(opportunities) >= limit {
			return
		}

		title := cleanText(e.ChildText(src.Selectors.Title))
		link := src.URL
		if src.Selectors.Link != "" {
			if raw := e.ChildAttr(src.Selectors.Link, linkAttr); raw != "" {
				link = e.Request.AbsoluteURL(raw)
			}
		}

		opp := models.Opportunity{
			ID:          fmt.Sprintf("forecast-%s-%s", src.ID, shortHash(title, link)),
			Title:       orDefault(title, defaultTitle),
			Agency:      orDefault(e.ChildText(src.Selectors.Agency), src.Agency),
			PostedDate:  cleanText(e.ChildText(src.Selectors.Date)),
			NAICSCode:   cleanText(e.ChildText(src.Selectors.NAICS)),
			Description: TruncateText(cleanText(e.Text), 280),
			Link:        link,
			Source:      f.Name(),
			Type:        models.TypeForecast,
			IsLive:      true,
		}

		if v, ok := parseMoney(e.ChildText(src.Selectors.Value)); ok {
			opp.Value = &v
		}

		opportunities = append(opportunities, opp)
	})

	c.OnError(func(_ *colly.Response, err error) {
		scrapeErr = err
	})

	if err := c.Visit(src.URL); err != nil {
		return nil, err
	}
	c.Wait()

	if scrapeErr != nil && len(opportunities) == 0 {
		return nil, scrapeErr
	}

	log.Printf("[Forecast] source %q: %d rows", src.ID, len(opportunities))
	return opportunities, nil
}
