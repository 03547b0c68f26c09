// Package eln is the client for the electronic lab notebook collaborator
// (eLabFTW-compatible v2 API). The core only produces artifacts; this client
// carries them out: create an experiment, set its body, attach the report,
// tag it.
package eln

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// ErrNotConfigured is returned when the client has no base URL or token.
var ErrNotConfigured = errors.New("eln client not configured")

// Config holds the connection settings of the ELN instance.
type Config struct {
	BaseURL   string        // e.g. https://eln.example.org/api/v2
	Token     string        // Authorization header value
	VerifySSL bool          // lab instances often run self-signed
	Timeout   time.Duration // per-request timeout
}

// Client talks to the ELN over HTTP. Safe for concurrent use.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient builds a client from config. The zero Timeout defaults to 30s.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	transport := http.DefaultTransport
	if !cfg.VerifySSL {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout, Transport: transport},
		logger: logger.With(slog.String("component", "eln_client")),
	}
}

// Configured reports whether the client can reach an instance at all.
func (c *Client) Configured() bool {
	return c.cfg.BaseURL != "" && c.cfg.Token != ""
}

// CreateExperiment creates an empty experiment and returns its id, taken
// from the Location header of the 201 response.
func (c *Client) CreateExperiment(ctx context.Context) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	resp, err := c.do(ctx, http.MethodPost, "/experiments", "application/json", strings.NewReader("{}"))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create experiment: unexpected status %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", errors.New("create experiment: missing Location header")
	}
	parts := strings.Split(strings.TrimRight(loc, "/"), "/")
	id := parts[len(parts)-1]
	c.logger.InfoContext(ctx, "experiment created", slog.String("experiment_id", id))
	return id, nil
}

// UpdateExperiment patches title and rich-text body of an experiment.
func (c *Client) UpdateExperiment(ctx context.Context, id, title, body string) error {
	payload, err := json.Marshal(map[string]string{"title": title, "body": body})
	if err != nil {
		return fmt.Errorf("marshal experiment patch: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPatch, "/experiments/"+id, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("patch experiment %s: unexpected status %d", id, resp.StatusCode)
	}
	return nil
}

// AttachFile uploads a binary attachment to an experiment.
func (c *Client) AttachFile(ctx context.Context, id, fileName, contentType string, data []byte) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		mime.FormatMediaType("form-data", map[string]string{"name": "file", "filename": fileName}))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("build multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write attachment: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/experiments/"+id+"/uploads", mw.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("attach %s to experiment %s: unexpected status %d", fileName, id, resp.StatusCode)
	}
	c.logger.InfoContext(ctx, "attachment uploaded",
		slog.String("experiment_id", id),
		slog.String("file_name", fileName),
		slog.String("content_type", contentType),
		slog.Int("bytes", len(data)))
	return nil
}

// SetTag applies a tag to an experiment.
func (c *Client) SetTag(ctx context.Context, id, tag string) error {
	payload, err := json.Marshal(map[string]string{"tag": tag})
	if err != nil {
		return fmt.Errorf("marshal tag: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, "/experiments/"+id+"/tags", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("tag experiment %s: unexpected status %d", id, resp.StatusCode)
	}
	return nil
}

// ExperimentURL returns the browsable address of an experiment.
func (c *Client) ExperimentURL(id string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/experiments/" + id
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", c.cfg.Token)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}
