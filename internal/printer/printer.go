// Package printer renders resumes to PDF and preview images through a
// headless Chrome pool (browserless).
package printer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/resumeforge/pkg/httpclient"
)

// Printer drives the headless Chrome endpoint.
type Printer struct {
	client  *httpclient.CircuitBreakerClient
	baseURL string
	token   string
	logger  *slog.Logger
}

// Config holds printer settings.
type Config struct {
	// URL of the browserless instance, e.g. http://chrome:3000.
	URL string

	// Token authenticates against browserless when set.
	Token string
}

// New creates a printer backed by the given browserless instance.
func New(cfg Config, client *httpclient.CircuitBreakerClient, logger *slog.Logger) *Printer {
	return &Printer{
		client:  client,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		token:   cfg.Token,
		logger:  logger,
	}
}

type pdfRequest struct {
	URL     string     `json:"url"`
	Options pdfOptions `json:"options"`
}

type pdfOptions struct {
	Format          string `json:"format"`
	PrintBackground bool   `json:"printBackground"`
}

type screenshotRequest struct {
	URL     string            `json:"url"`
	Options screenshotOptions `json:"options"`
}

type screenshotOptions struct {
	Type     string `json:"type"`
	FullPage bool   `json:"fullPage"`
}

// PrintPDF renders the page at url to an A4 PDF and returns the document
// bytes.
func (p *Printer) PrintPDF(ctx context.Context, url string) ([]byte, error) {
	body := pdfRequest{
		URL: url,
		Options: pdfOptions{
			Format:          "A4",
			PrintBackground: true,
		},
	}

	data, err := p.post(ctx, "/pdf", body)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	p.logger.DebugContext(ctx, "rendered pdf",
		slog.String("url", url),
		slog.Int("bytes", len(data)),
	)

	return data, nil
}

// Screenshot captures a full-page PNG of the page at url.
func (p *Printer) Screenshot(ctx context.Context, url string) ([]byte, error) {
	body := screenshotRequest{
		URL: url,
		Options: screenshotOptions{
			Type:     "png",
			FullPage: true,
		},
	}

	data, err := p.post(ctx, "/screenshot", body)
	if err != nil {
		return nil, fmt.Errorf("render screenshot: %w", err)
	}

	return data, nil
}

// Healthy checks whether the Chrome pool is reachable.
func (p *Printer) Healthy(ctx context.Context) error {
	resp, err := p.client.Get(ctx, p.endpoint("/json/version"))
	if err != nil {
		return fmt.Errorf("chrome health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chrome health check: status %d", resp.StatusCode)
	}

	return nil
}

func (p *Printer) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := p.client.Post(ctx, p.endpoint(path), "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "chrome")
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return data, nil
}

func (p *Printer) endpoint(path string) string {
	if p.token != "" {
		return p.baseURL + path + "?token=" + p.token
	}
	return p.baseURL + path
}
