package bayes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mylittlethingz/backend/internal/domain/shipping"
)

// maxResponseSize caps the external scorer response (1MB)
const maxResponseSize = 1 << 20

// ErrMalformedResponse indicates the external scorer reply could not
// be trusted; the whole reply is discarded, never partially used.
var ErrMalformedResponse = errors.New("bayes: external scorer response is malformed")

// ExternalConfig configures the delegate endpoint
type ExternalConfig struct {
	Endpoint       string
	TimeoutSeconds int
}

// Validate checks the configuration
func (c ExternalConfig) Validate() error {
	if c.Endpoint == "" {
		return errors.New("bayes: external scorer endpoint is required")
	}
	if c.TimeoutSeconds < 1 {
		return errors.New("bayes: external scorer timeout must be at least one second")
	}
	return nil
}

// ExternalClient calls an external courier-scoring endpoint. The
// contract is strict: the response must carry a score for every
// option sent, in order, or the response is rejected entirely.
type ExternalClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewExternalClient creates a client for the configured endpoint
func NewExternalClient(cfg ExternalConfig) (*ExternalClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ExternalClient{
		endpoint: cfg.Endpoint,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}, nil
}

type scoreRequest struct {
	Order   shipping.ShipmentOrder   `json:"order"`
	Options []shipping.CourierOption `json:"options"`
}

type scoredOptionPayload struct {
	CourierCompanyID int      `json:"courier_company_id"`
	BayesScore       *float64 `json:"_bayes_score"`
}

type scoreResponse struct {
	Options []scoredOptionPayload `json:"options"`
}

// Score posts the order and options and returns one score per option,
// aligned by courier company ID. A missing score for any option fails
// the whole call.
func (c *ExternalClient) Score(ctx context.Context, order shipping.ShipmentOrder, options []shipping.CourierOption) ([]float64, error) {
	body, err := json.Marshal(scoreRequest{Order: order, Options: options})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bayes: external scorer returned status %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}

	var parsed scoreResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	byCompany := make(map[int]float64, len(parsed.Options))
	for _, opt := range parsed.Options {
		if opt.BayesScore == nil {
			return nil, ErrMalformedResponse
		}
		byCompany[opt.CourierCompanyID] = *opt.BayesScore
	}

	scores := make([]float64, len(options))
	for i, opt := range options {
		score, ok := byCompany[opt.CourierCompanyID]
		if !ok {
			return nil, ErrMalformedResponse
		}
		scores[i] = score
	}
	return scores, nil
}
