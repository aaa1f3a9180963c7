// Package training talks to the external text classification service that trains
// models and scores datasets.
package training

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/clasifica/clasifica-backend/internal/config"
	"github.com/clasifica/clasifica-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// maxErrorBody caps how much of a failed response is kept in the error
const maxErrorBody = 1024

type trainResponse struct {
	ModelID string `json:"model_id"`
}

type metricsResponse struct {
	Report map[string]any `json:"report"`
}

// Client sends datasets to the configured train and metrics endpoints
type Client struct {
	httpClient *http.Client
	cfg        config.TrainingConfig
}

// NewClient creates a new training client
func NewClient(cfg config.TrainingConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

// Train submits the dataset for training and returns the id of the trained model
func (c *Client) Train(ctx context.Context, dataset *domain.TrainDataset) (domain.WorkspaceModelID, error) {
	var resp trainResponse
	if err := c.do(ctx, c.cfg.TrainMethod, c.cfg.TrainURL, dataset, &resp); err != nil {
		return "", err
	}
	if resp.ModelID == "" {
		return "", fmt.Errorf("%w: response has no model_id", domain.ErrTrainingResponse)
	}
	return domain.WorkspaceModelID(resp.ModelID), nil
}

// Metrics submits the dataset for scoring and returns the classification report
func (c *Client) Metrics(ctx context.Context, dataset *domain.TrainDataset) (domain.WorkspaceMetrics, error) {
	var resp metricsResponse
	if err := c.do(ctx, c.cfg.MetricsMethod, c.cfg.MetricsURL, dataset, &resp); err != nil {
		return nil, err
	}
	if resp.Report == nil {
		return nil, fmt.Errorf("%w: response has no report", domain.ErrTrainingResponse)
	}
	return domain.WorkspaceMetrics(resp.Report), nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, dataset *domain.TrainDataset, out any) error {
	if err := dataset.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(dataset)
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTrainingRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.HostHeader != "" {
		req.Host = c.cfg.HostHeader
	}

	log.Debug().
		Str("method", method).
		Str("url", endpoint).
		Int("documents", dataset.Len()).
		Msg("Calling training service")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTrainingRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", domain.ErrTrainingRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		log.Error().
			Int("status", resp.StatusCode).
			Str("url", endpoint).
			Str("body", string(body)).
			Msg("Training service returned error")
		return fmt.Errorf("%w: status %d: %s", domain.ErrTrainingResponse, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", domain.ErrTrainingResponse, err)
	}
	return nil
}
