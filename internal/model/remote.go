package model

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Skufu/heartrisk/internal/assessment"
)

type featuresRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Label *int `json:"label"`
}

type probaResponse struct {
	Probabilities []float64 `json:"probabilities"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Remote calls an inference sidecar that hosts the trained model. Requests
// are never retried: a failed inference is a configuration defect.
type Remote struct {
	client  *resty.Client
	version string
	logger  *zap.Logger
}

// NewRemote checks the sidecar's /health endpoint once and fails with
// assessment.ErrModelUnavailable if it cannot be reached.
func NewRemote(ctx context.Context, baseURL string, timeout time.Duration, logger *zap.Logger) (*Remote, error) {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	var health healthResponse
	resp, err := client.R().
		SetContext(ctx).
		SetResult(&health).
		Get("/health")
	if err != nil {
		return nil, fmt.Errorf("%w: model sidecar %s: %v", assessment.ErrModelUnavailable, baseURL, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: model sidecar %s returned %d", assessment.ErrModelUnavailable, baseURL, resp.StatusCode())
	}

	version := health.Version
	if version == "" {
		version = "remote"
	}
	logger.Info("model sidecar ready",
		zap.String("url", baseURL),
		zap.String("version", version),
	)

	return &Remote{client: client, version: version, logger: logger}, nil
}

func (r *Remote) Version() string { return r.version }

func (r *Remote) Predict(ctx context.Context, features []float64) (int, error) {
	var out predictResponse
	if err := r.post(ctx, "/predict", features, &out); err != nil {
		return 0, err
	}
	if out.Label == nil {
		return 0, fmt.Errorf("%w: /predict response has no label", assessment.ErrPrediction)
	}
	return *out.Label, nil
}

func (r *Remote) PredictProba(ctx context.Context, features []float64) ([]float64, error) {
	var out probaResponse
	if err := r.post(ctx, "/predict_proba", features, &out); err != nil {
		return nil, err
	}
	return out.Probabilities, nil
}

func (r *Remote) post(ctx context.Context, path string, features []float64, result interface{}) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(featuresRequest{Features: features}).
		Post(path)
	if err != nil {
		r.logger.Error("model sidecar call failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%w: %s: %v", assessment.ErrModelUnavailable, path, err)
	}
	if resp.IsError() {
		r.logger.Warn("model sidecar rejected request",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode()),
		)
		return fmt.Errorf("%w: %s returned %d: %s", assessment.ErrPrediction, path, resp.StatusCode(), resp.String())
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", assessment.ErrPrediction, path, err)
	}
	return nil
}
