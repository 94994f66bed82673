// Package submission delivers letters to the API with a fallback chain:
// primary endpoint, secondary endpoint, then a locally synthesized record.
package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/gratitude-api/internal/dto"
	"github.com/noah-isme/gratitude-api/pkg/config"
)

const (
	defaultTimeout  = 5 * time.Second
	maxResponseSize = 1 << 20
	localIDPrefix   = "local-"
)

// Source identifies which link of the chain produced a result.
type Source string

const (
	SourcePrimary   Source = "primary"
	SourceSecondary Source = "secondary"
	SourceLocal     Source = "local"
)

// Result is the outcome of a submission. Success is always true once input
// validation passes.
type Result struct {
	Success  bool             `json:"success"`
	Data     dto.LetterRecord `json:"data"`
	Degraded bool             `json:"degraded,omitempty"`
	Source   Source           `json:"-"`
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport used for both endpoints.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client submits letters. It is safe for concurrent use.
type Client struct {
	primary   string
	secondary string
	timeout   time.Duration
	http      *http.Client
	logger    *zap.Logger
	now       func() time.Time
}

// NewClient builds a client from submission settings.
func NewClient(cfg config.SubmissionConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		primary:   cfg.PrimaryURL,
		secondary: cfg.SecondaryURL,
		timeout:   timeout,
		http:      &http.Client{},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool             `json:"success"`
	Data    dto.LetterRecord `json:"data"`
	Error   string           `json:"error"`
}

// Submit normalizes input and delivers it. Only a validation error is ever
// returned; delivery failures end in a degraded local result.
func (c *Client) Submit(ctx context.Context, input map[string]interface{}) (*Result, error) {
	letter, err := dto.NormalizeLetter(input)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(dto.NewLetterRecord(letter, ""))
	if err != nil {
		return nil, fmt.Errorf("encode letter: %w", err)
	}

	record, err := c.attempt(ctx, c.primary, payload)
	if err == nil {
		return &Result{Success: true, Data: record, Source: SourcePrimary}, nil
	}
	c.logger.Info("primary submission failed", zap.String("endpoint", c.primary), zap.Error(err))

	record, err = c.attempt(ctx, c.secondary, payload)
	if err == nil {
		return &Result{Success: true, Data: record, Source: SourceSecondary}, nil
	}

	letter.CreatedAt = c.now().UTC()
	local := dto.NewLetterRecord(letter, localIDPrefix+uuid.NewString())
	c.logger.Warn("letter submission degraded to local record",
		zap.String("id", local.ID),
		zap.String("country_id", local.CountryID),
		zap.String("original_content", local.OriginalContent),
		zap.Error(err),
	)
	return &Result{Success: true, Data: local, Degraded: true, Source: SourceLocal}, nil
}

func (c *Client) attempt(ctx context.Context, url string, payload []byte) (dto.LetterRecord, error) {
	if url == "" {
		return dto.LetterRecord{}, errors.New("endpoint not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return dto.LetterRecord{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return dto.LetterRecord{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return dto.LetterRecord{}, fmt.Errorf("received status %d", resp.StatusCode)
	}

	var body envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&body); err != nil {
		return dto.LetterRecord{}, fmt.Errorf("decode response: %w", err)
	}
	if !body.Success {
		return dto.LetterRecord{}, fmt.Errorf("endpoint reported failure: %s", body.Error)
	}
	return body.Data, nil
}
