package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"lexcase-backend/extract"
	"lexcase-backend/models"
)

// ElasticConfig holds the Elasticsearch connection settings
type ElasticConfig struct {
	URL         string
	Username    string
	Password    string
	IndexPrefix string
	// Stempel adds the polish_stem filter; requires the analysis-stempel plugin
	Stempel bool
	// Transport overrides the HTTP transport (tests)
	Transport http.RoundTripper
}

// ElasticIndex stores each case in its own Elasticsearch index named
// "{prefix}-{caseID}".
type ElasticIndex struct {
	client *elasticsearch.Client
	prefix string
	stem   bool
	logger *slog.Logger
}

// NewElasticIndex creates the client; it does not contact the cluster
func NewElasticIndex(cfg ElasticConfig, logger *slog.Logger) (*ElasticIndex, error) {
	if logger == nil {
		logger = slog.Default()
	}
	prefix := cfg.IndexPrefix
	if prefix == "" {
		prefix = "case"
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &ElasticIndex{
		client: client,
		prefix: prefix,
		stem:   cfg.Stempel,
		logger: logger,
	}, nil
}

// IndexName returns the index backing a case
func (e *ElasticIndex) IndexName(caseID uuid.UUID) string {
	return fmt.Sprintf("%s-%s", e.prefix, caseID)
}

func (e *ElasticIndex) CreateNamespace(ctx context.Context, caseID uuid.UUID) error {
	name := e.IndexName(caseID)

	res, err := e.client.Indices.Exists([]string{name}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return unavailable("check index", err)
	}
	drain(res)
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return responseError("check index", res)
	}

	body, err := json.Marshal(e.indexSettings())
	if err != nil {
		return fmt.Errorf("failed to encode index settings: %w", err)
	}

	res, err = e.client.Indices.Create(name,
		e.client.Indices.Create.WithContext(ctx),
		e.client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return unavailable("create index", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body := readError(res)
		// lost a race with a concurrent create
		if res.StatusCode == http.StatusBadRequest && body.Error.Type == "resource_already_exists_exception" {
			return nil
		}
		return statusError("create index", res, body)
	}

	e.logger.Info("created case index", "index", name)
	return nil
}

func (e *ElasticIndex) Index(ctx context.Context, caseID uuid.UUID, unit models.IndexedUnit) error {
	unit.CaseID = caseID
	body, err := json.Marshal(unit)
	if err != nil {
		return fmt.Errorf("failed to encode unit %s: %w", unit.ID, err)
	}

	res, err := e.client.Index(e.IndexName(caseID), bytes.NewReader(body),
		e.client.Index.WithContext(ctx),
		e.client.Index.WithDocumentID(unit.ID),
		e.client.Index.WithRefresh("true"),
	)
	if err != nil {
		return unavailable("index unit", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError("index unit", res)
	}
	return nil
}

func (e *ElasticIndex) Delete(ctx context.Context, caseID uuid.UUID, unitID string) error {
	res, err := e.client.Delete(e.IndexName(caseID), unitID,
		e.client.Delete.WithContext(ctx),
		e.client.Delete.WithRefresh("true"),
	)
	if err != nil {
		return unavailable("delete unit", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete unit", res)
	}
	return nil
}

func (e *ElasticIndex) DeleteNamespace(ctx context.Context, caseID uuid.UUID) error {
	res, err := e.client.Indices.Delete([]string{e.IndexName(caseID)},
		e.client.Indices.Delete.WithContext(ctx),
		e.client.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return unavailable("delete index", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete index", res)
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID        string              `json:"_id"`
			Score     float64             `json:"_score"`
			Source    models.IndexedUnit  `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
}

func (e *ElasticIndex) Query(ctx context.Context, caseID uuid.UUID, text string, maxResults int) ([]Hit, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	body, err := json.Marshal(e.queryBody(text, maxResults))
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.IndexName(caseID)),
		e.client.Search.WithBody(bytes.NewReader(body)),
		e.client.Search.WithTrackScores(true),
	)
	if err != nil {
		return nil, unavailable("search", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return []Hit{}, nil
	}
	if res.IsError() {
		return nil, responseError("search", res)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		unit := h.Source
		unit.ID = h.ID
		highlights := h.Highlight
		if highlights == nil {
			highlights = map[string][]string{}
		}
		hits = append(hits, Hit{ID: h.ID, Score: h.Score, Unit: unit, Highlights: highlights})
	}
	return hits, nil
}

func (e *ElasticIndex) Ping(ctx context.Context) error {
	res, err := e.client.Ping(e.client.Ping.WithContext(ctx))
	if err != nil {
		return unavailable("ping", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: ping returned %s", ErrUnavailable, res.Status())
	}
	return nil
}

func (e *ElasticIndex) queryBody(text string, maxResults int) map[string]any {
	fields := []string{"content^3", "title^2", "filename", "court_name"}
	return map[string]any{
		"size": maxResults,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     text,
				"fields":    fields,
				"fuzziness": "AUTO",
			},
		},
		"highlight": map[string]any{
			"pre_tags":  []string{HighlightPre},
			"post_tags": []string{HighlightPost},
			"fields": map[string]any{
				"content": map[string]any{},
				"title":   map[string]any{},
			},
		},
		// equal scores keep insertion order
		"sort": []any{
			map[string]any{"_score": map[string]any{"order": "desc"}},
			map[string]any{"timestamp": map[string]any{"order": "asc"}},
		},
	}
}

func (e *ElasticIndex) indexSettings() map[string]any {
	filters := []string{"lowercase", "polish_stop"}
	analysisFilters := map[string]any{
		"polish_stop": map[string]any{
			"type":      "stop",
			"stopwords": extract.PolishStopwords,
		},
	}
	if e.stem {
		filters = append(filters, "polish_stem")
		analysisFilters["polish_stem"] = map[string]any{"type": "polish_stem"}
	}

	polishText := map[string]any{"type": "text", "analyzer": "polish_text"}
	return map[string]any{
		"settings": map[string]any{
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"polish_text": map[string]any{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    filters,
					},
				},
				"filter": analysisFilters,
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"case_id":       map[string]any{"type": "keyword"},
				"type":          map[string]any{"type": "keyword"},
				"content":       polishText,
				"title":         polishText,
				"filename":      polishText,
				"description":   polishText,
				"court_name":    polishText,
				"document_type": map[string]any{"type": "keyword"},
				"external_id":   map[string]any{"type": "keyword"},
				"case_number":   map[string]any{"type": "keyword"},
				"publication":   map[string]any{"type": "keyword"},
				"judgment_date": map[string]any{"type": "keyword"},
				"year":          map[string]any{"type": "integer"},
				"timestamp":     map[string]any{"type": "date"},
			},
		},
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

func responseError(op string, res *esapi.Response) error {
	return statusError(op, res, readError(res))
}

// statusError maps 5xx responses to ErrUnavailable and reports the rest as-is
func statusError(op string, res *esapi.Response, body errorBody) error {
	msg := strings.TrimSpace(body.Error.Reason)
	if res.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s returned %s: %s", ErrUnavailable, op, res.Status(), msg)
	}
	return fmt.Errorf("elasticsearch %s returned %s: %s", op, res.Status(), msg)
}

type errorBody struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

func readError(res *esapi.Response) errorBody {
	var body errorBody
	if res.Body == nil {
		return body
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return body
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Error.Type == "" {
		body.Error.Reason = string(data)
	}
	return body
}

func drain(res *esapi.Response) {
	if res.Body != nil {
		_, _ = io.Copy(io.Discard, res.Body)
		res.Body.Close()
	}
}
