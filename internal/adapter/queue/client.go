package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tapneat/config"
	"tapneat/internal/adapter/http/dto"
	"tapneat/internal/core/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Client implements ports.JobSource against the print-queue HTTP contract.
// The dispatcher runs inside the printer LAN and reaches the central API
// only through these two endpoints, authenticated by a shared static key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a queue client from dispatcher config.
func NewClient(cfg config.QueueConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log.With().Str("component", "queue_client").Logger(),
	}
}

type claimEnvelope struct {
	Data dto.ClaimResponse `json:"data"`
}

type errorEnvelope struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// Claim fetches and claims up to limit pending jobs.
func (c *Client) Claim(ctx context.Context, limit int) ([]domain.PrintJob, error) {
	url := c.baseURL + "/api/v1/print-queue/jobs?limit=" + strconv.Itoa(limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build claim request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("claim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError("claim", resp)
	}

	var env claimEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode claim response: %w", err)
	}

	jobs := make([]domain.PrintJob, 0, len(env.Data.Jobs))
	for _, wire := range env.Data.Jobs {
		job, err := wire.ToDomain()
		if err != nil {
			// A malformed job must not wedge the whole batch.
			c.log.Warn().Err(err).Str("job_id", wire.ID).Msg("skipping malformed job")
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Report posts a terminal status for a claimed job.
func (c *Client) Report(ctx context.Context, id uuid.UUID, status domain.PrintJobStatus, errDetail string) error {
	payload := dto.StatusUpdateRequest{
		JobID:  id.String(),
		Status: string(status),
	}
	if errDetail != "" {
		payload.Error = &errDetail
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode status report: %w", err)
	}

	url := c.baseURL + "/api/v1/print-queue/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.apiError("status report", resp)
	}
	return nil
}

func (c *Client) apiError(op string, resp *http.Response) error {
	var env errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Message != "" {
		return fmt.Errorf("%s failed: %d %s (%s)", op, resp.StatusCode, env.Message, env.ErrorCode)
	}
	return fmt.Errorf("%s failed: status %d", op, resp.StatusCode)
}
