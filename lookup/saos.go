package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lexcase-backend/models"
)

// DefaultSAOSBaseURL is the SAOS public API root
const DefaultSAOSBaseURL = "https://www.saos.org.pl/api"

const saosJudgmentURL = "https://www.saos.org.pl/judgments/"

// Court names for court types whose records carry no division
var courtTypeNames = map[string]string{
	"SUPREME":                 "Sąd Najwyższy",
	"CONSTITUTIONAL_TRIBUNAL": "Trybunał Konstytucyjny",
	"NATIONAL_APPEAL_CHAMBER": "Krajowa Izba Odwoławcza",
	"ADMINISTRATIVE":          "Sąd administracyjny",
	"COMMON":                  "Sąd powszechny",
}

// SAOSClient searches and fetches court judgments through the SAOS API
type SAOSClient struct {
	*client
}

// NewSAOSClient creates a client for the SAOS API at baseURL
func NewSAOSClient(baseURL string, opts ...Option) *SAOSClient {
	if baseURL == "" {
		baseURL = DefaultSAOSBaseURL
	}
	return &SAOSClient{client: newClient("saos", baseURL, opts...)}
}

type saosJudgment struct {
	ID         int64  `json:"id"`
	CourtType  string `json:"courtType"`
	CourtCases []struct {
		CaseNumber string `json:"caseNumber"`
	} `json:"courtCases"`
	JudgmentType string   `json:"judgmentType"`
	JudgmentDate string   `json:"judgmentDate"`
	TextContent  string   `json:"textContent"`
	Keywords     []string `json:"keywords"`
	Division     *struct {
		Name  string `json:"name"`
		Court struct {
			Name string `json:"name"`
		} `json:"court"`
	} `json:"division"`
}

func (j saosJudgment) caseNumber() string {
	numbers := make([]string, 0, len(j.CourtCases))
	for _, c := range j.CourtCases {
		if c.CaseNumber != "" {
			numbers = append(numbers, c.CaseNumber)
		}
	}
	return strings.Join(numbers, ", ")
}

func (j saosJudgment) courtName() string {
	if j.Division != nil && j.Division.Court.Name != "" {
		return j.Division.Court.Name
	}
	if name, ok := courtTypeNames[j.CourtType]; ok {
		return name
	}
	return j.CourtType
}

func (j saosJudgment) date() *time.Time {
	t, err := time.Parse("2006-01-02", j.JudgmentDate)
	if err != nil {
		return nil
	}
	return &t
}

// Search runs a full-text judgment search, newest first
func (c *SAOSClient) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	params := url.Values{}
	params.Set("all", query)
	params.Set("pageSize", strconv.Itoa(clampLimit(limit)))
	params.Set("pageNumber", "0")
	params.Set("sortingField", "JUDGMENT_DATE")
	params.Set("sortingDirection", "DESC")

	body, err := c.get(ctx, "/search/judgments", params, "application/json")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Result{}, nil
		}
		return nil, err
	}

	var resp struct {
		Items []saosJudgment `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode SAOS search response: %w", err)
	}

	results := make([]Result, 0, len(resp.Items))
	for _, j := range resp.Items {
		results = append(results, Result{
			ExternalID: strconv.FormatInt(j.ID, 10),
			Title:      j.caseNumber(),
			Text:       htmlFragmentToText(j.TextContent),
			Metadata: map[string]string{
				"court_name":    j.courtName(),
				"court_type":    j.CourtType,
				"case_number":   j.caseNumber(),
				"judgment_date": j.JudgmentDate,
				"judgment_type": j.JudgmentType,
			},
		})
	}
	return results, nil
}

// Fetch loads a judgment with its full text by SAOS id
func (c *SAOSClient) Fetch(ctx context.Context, id string) (*models.Judgment, error) {
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: invalid SAOS judgment id %q", ErrNotFound, id)
	}

	body, err := c.get(ctx, "/judgments/"+id, nil, "application/json")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data saosJudgment `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode SAOS judgment: %w", err)
	}
	j := resp.Data

	return &models.Judgment{
		ExternalID:   id,
		CourtName:    j.courtName(),
		CourtType:    j.CourtType,
		CaseNumber:   j.caseNumber(),
		JudgmentDate: j.date(),
		Content:      htmlFragmentToText(j.TextContent),
		SourceURL:    saosJudgmentURL + id,
	}, nil
}
