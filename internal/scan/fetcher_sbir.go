package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/singh-automation/winscope/internal/models"
)

// SBIRFetcher searches the SBIR.gov public solicitations API for open
// SBIR/STTR topics.
type SBIRFetcher struct {
	Client  *http.Client
	BaseURL string
}

func NewSBIRFetcher() *SBIRFetcher {
	return &SBIRFetcher{
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		BaseURL: "https://api.www.sbir.gov/public/api/solicitations",
	}
}

func (f *SBIRFetcher) Name() string { return "sbir.gov" }

type sbirRecord struct {
	SolicitationNumber    string `json:"solicitation_number"`
	SolicitationTitle     string `json:"solicitation_title"`
	Agency                string `json:"agency"`
	Program               string `json:"program"`
	Phase                 string `json:"phase"`
	OpenDate              string `json:"open_date"`
	CloseDate             string `json:"close_date"`
	CurrentStatus         string `json:"current_status"`
	SolicitationAgencyURL string `json:"solicitation_agency_url"`
	SolicitationTopics    []struct {
		TopicTitle       string `json:"topic_title"`
		TopicDescription string `json:"topic_description"`
	} `json:"solicitation_topics"`
}

func (f *SBIRFetcher) Fetch(ctx context.Context, terms []string, p Params) ([]models.Opportunity, error) {
	return fetchTerms(ctx, "SBIR", terms, func(ctx context.Context, term string) ([]models.Opportunity, error) {
		return f.fetchTerm(ctx, term, p)
	})
}

func (f *SBIRFetcher) fetchTerm(ctx context.Context, term string, p Params) ([]models.Opportunity, error) {
	query := url.Values{}
	query.Set("keyword", term)
	query.Set("open", "1")
	query.Set("rows", strconv.Itoa(p.PerTermLimit))

	req, err := http.NewRequestWithContext(ctx, "GET", f.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API returned %d: %s", resp.StatusCode, string(body))
	}

	var records []sbirRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	log.Printf("[SBIR] term %q: %d solicitations", term, len(records))

	opportunities := make([]models.Opportunity, 0, len(records))
	for _, rec := range records {
		id := rec.SolicitationNumber
		if id == "" {
			id = shortHash(rec.SolicitationTitle, rec.OpenDate)
		}

		opp := models.Opportunity{
			ID:          "sbir-" + id,
			Title:       orDefault(rec.SolicitationTitle, defaultTitle),
			Agency:      orDefault(rec.Agency, defaultAgency),
			PostedDate:  rec.OpenDate,
			CloseDate:   rec.CloseDate,
			Description: fmt.Sprintf("%s %s solicitation", rec.Program, rec.Phase),
			Link:        rec.SolicitationAgencyURL,
			Source:      f.Name(),
			Type:        models.TypeSBIR,
			IsLive:      !strings.EqualFold(rec.CurrentStatus, "closed"),
		}

		// Topic text is where the keyword signal lives; fold it into the
		// long description used for matching.
		var topics []string
		for _, t := range rec.SolicitationTopics {
			topics = append(topics, t.TopicTitle, sanitizeUTF8(HTMLToText(sanitizeHTML(t.TopicDescription))))
		}
		opp.FullDescription = cleanText(strings.Join(topics, " "))

		opportunities = append(opportunities, opp)
	}

	return opportunities, nil
}
