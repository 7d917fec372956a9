package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"lexcase-backend/models"
)

// DefaultISAPBaseURL is the Sejm ELI API root
const DefaultISAPBaseURL = "https://api.sejm.gov.pl/eli"

const isapDetailsURL = "https://isap.sejm.gov.pl/isap.nsf/DocDetails.xsp?id="

// ELI identifiers look like "DU/1964/93": publisher, year, position
var eliPattern = regexp.MustCompile(`^([A-Z]+)/(\d{4})/(\d+)$`)

// ISAPClient searches and fetches statutes through the Sejm ELI API
type ISAPClient struct {
	*client
}

// NewISAPClient creates a client for the ELI API at baseURL
func NewISAPClient(baseURL string, opts ...Option) *ISAPClient {
	if baseURL == "" {
		baseURL = DefaultISAPBaseURL
	}
	return &ISAPClient{client: newClient("isap", baseURL, opts...)}
}

type eliAct struct {
	ELI            string `json:"ELI"`
	Address        string `json:"address"`
	Publisher      string `json:"publisher"`
	Year           int    `json:"year"`
	Pos            int    `json:"pos"`
	Title          string `json:"title"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	DisplayAddress string `json:"displayAddress"`
	Promulgation   string `json:"promulgation"`
	TextHTML       bool   `json:"textHTML"`
}

func (a eliAct) publication() string {
	if a.DisplayAddress != "" {
		return a.DisplayAddress
	}
	switch a.Publisher {
	case "DU":
		return fmt.Sprintf("Dz.U. %d poz. %d", a.Year, a.Pos)
	case "MP":
		return fmt.Sprintf("M.P. %d poz. %d", a.Year, a.Pos)
	default:
		return fmt.Sprintf("%s %d poz. %d", a.Publisher, a.Year, a.Pos)
	}
}

// Search finds acts whose title matches query
func (c *ISAPClient) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	params := url.Values{}
	params.Set("title", query)
	params.Set("limit", strconv.Itoa(clampLimit(limit)))

	body, err := c.get(ctx, "/acts/search", params, "application/json")
	if err != nil {
		// the search endpoint has no 404 semantics
		if errors.Is(err, ErrNotFound) {
			return []Result{}, nil
		}
		return nil, err
	}

	var resp struct {
		Count int      `json:"count"`
		Items []eliAct `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode ISAP search response: %w", err)
	}

	results := make([]Result, 0, len(resp.Items))
	for _, act := range resp.Items {
		results = append(results, Result{
			ExternalID: act.ELI,
			Title:      act.Title,
			Metadata: map[string]string{
				"publication":  act.publication(),
				"year":         strconv.Itoa(act.Year),
				"type":         act.Type,
				"status":       act.Status,
				"promulgation": act.Promulgation,
			},
		})
	}
	if len(results) > clampLimit(limit) {
		results = results[:clampLimit(limit)]
	}
	return results, nil
}

// Fetch loads an act by its ELI identifier, including its text when the API
// publishes an HTML version
func (c *ISAPClient) Fetch(ctx context.Context, eli string) (*models.LegalAct, error) {
	if !eliPattern.MatchString(eli) {
		return nil, fmt.Errorf("%w: invalid ELI identifier %q", ErrNotFound, eli)
	}

	body, err := c.get(ctx, "/acts/"+eli, nil, "application/json")
	if err != nil {
		return nil, err
	}
	var act eliAct
	if err := json.Unmarshal(body, &act); err != nil {
		return nil, fmt.Errorf("failed to decode ISAP act: %w", err)
	}

	legalAct := &models.LegalAct{
		ExternalID:   eli,
		Title:        act.Title,
		Publication:  act.publication(),
		Year:         act.Year,
		DocumentType: act.Type,
	}
	if act.Address != "" {
		legalAct.SourceURL = isapDetailsURL + act.Address
	}

	if act.TextHTML {
		text, err := c.fetchText(ctx, eli)
		if err != nil {
			return nil, err
		}
		legalAct.Content = text
	}
	if legalAct.Content == "" {
		legalAct.Content = act.Title
	}
	return legalAct, nil
}

func (c *ISAPClient) fetchText(ctx context.Context, eli string) (string, error) {
	body, err := c.get(ctx, "/acts/"+eli+"/text.html", nil, "text/html")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return HTMLToText(bytes.NewReader(body))
}
