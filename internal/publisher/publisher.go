// Package publisher sends extracted records to the knowledge-base catalog,
// one POST per record, in order.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/starford/patterns-sync/internal/apperr"
	"github.com/starford/patterns-sync/internal/models"
)

// Config holds the catalog endpoint settings.
type Config struct {
	APIURL       string
	APIKey       string
	EndpointPath string // appended verbatim to APIURL, e.g. "/api/patterns"
	Catalog      string // catalog label sent with every payload
	SummaryField string // record field preferred for the summary
	UserAgent    string
}

// Payload is the request body for one record.
type Payload struct {
	UID        string         `json:"uid"`
	Title      models.Value   `json:"title"`
	Summary    models.Value   `json:"summary"`
	Catalog    string         `json:"catalog"`
	Properties *models.Record `json:"properties"`
}

// Result counts the outcome of a Publish call.
type Result struct {
	Accepted int
	Rejected int
}

// Publisher posts records to the catalog endpoint.
type Publisher struct {
	client   *http.Client
	cfg      Config
	endpoint string
	logger   *slog.Logger
}

// New creates a Publisher. A nil client uses http.DefaultClient.
func New(cfg Config, client *http.Client, logger *slog.Logger) *Publisher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client:   client,
		cfg:      cfg,
		endpoint: cfg.APIURL + cfg.EndpointPath,
		logger:   logger,
	}
}

// Endpoint returns the URL records are posted to.
func (p *Publisher) Endpoint() string {
	return p.endpoint
}

// BuildPayload wraps rec in the catalog envelope. The summary is the
// configured summary field when it is set, otherwise the markdown body.
func (p *Publisher) BuildPayload(rec *models.Record) Payload {
	title, _ := rec.Get("title")
	summary, ok := rec.Get(p.cfg.SummaryField)
	if !ok || !summary.Truthy() {
		summary, _ = rec.Get("markdown")
	}
	return Payload{
		UID:        rec.String("slug"),
		Title:      title,
		Summary:    summary,
		Catalog:    p.cfg.Catalog,
		Properties: rec,
	}
}

// Publish posts every record in order. A non-2xx response is logged and
// counted as rejected; a transport failure stops the loop and is returned.
func (p *Publisher) Publish(ctx context.Context, records []*models.Record) (Result, error) {
	var res Result
	for _, rec := range records {
		slug := rec.String("slug")
		status, err := p.post(ctx, p.BuildPayload(rec))
		if err != nil {
			return res, fmt.Errorf("%w: %s: %w", apperr.ErrTransport, slug, err)
		}

		if status >= 200 && status < 300 {
			res.Accepted++
			p.logger.Info("published record", slog.String("slug", slug), slog.Int("status", status))
			continue
		}
		res.Rejected++
		p.logger.Warn("published record", slog.String("slug", slug), slog.Int("status", status))
	}
	return res, nil
}

func (p *Publisher) post(ctx context.Context, payload Payload) (int, error) {
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return 0, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, &body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.cfg.APIKey)
	if p.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", p.cfg.UserAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	// Drain so the connection can be reused; the body is not inspected.
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode, nil
}
