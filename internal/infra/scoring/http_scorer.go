// Package scoring integrates the external ML scoring service.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"salaf/config"
	"salaf/internal/domain/entity"
	"salaf/internal/domain/service"

	"github.com/pkg/errors"
)

// httpScorer calls the ML scoring service over HTTP. The call is a pure
// read/compute: the same applicant data always yields a snapshot and no
// state is kept here, which is what makes the usecase-level score operation
// safe to repeat and to run concurrently.
type httpScorer struct {
	baseURL string
	client  *http.Client
}

// NewHTTPScorer is the constructor for httpScorer.
func NewHTTPScorer(cfg *config.Config) service.Scorer {
	timeout := cfg.Scoring.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &httpScorer{
		baseURL: cfg.Scoring.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// scoreRequest is the wire format the scoring service accepts.
type scoreRequest struct {
	Amount          float64 `json:"amount"`
	Duration        int     `json:"duration"`
	InterestRate    float64 `json:"interestRate"`
	MonthlyIncome   float64 `json:"monthlyIncome"`
	Employed        bool    `json:"employed"`
	IsFunctionnaire bool    `json:"isFunctionnaire"`
	Age             int     `json:"age"`
	Profession      string  `json:"profession,omitempty"`
	HasGuarantor    bool    `json:"hasGuarantor"`
}

// scoreResponse is the wire format the scoring service returns.
type scoreResponse struct {
	CreditScore        int      `json:"creditScore"`
	RiskLevel          string   `json:"riskLevel"`
	ProbabilityDefault float64  `json:"probabilityDefault"`
	Recommendations    string   `json:"recommendations"`
	RedFlags           []string `json:"redFlags"`
	PositiveFactors    []string `json:"positiveFactors"`
	MaxSuggestedAmount float64  `json:"maxSuggestedAmount"`
	SuggestedDuration  int      `json:"suggestedDuration"`
	Error              string   `json:"error,omitempty"`
}

// Score submits the applicant data and returns the resulting snapshot.
func (s *httpScorer) Score(ctx context.Context, input service.ScoringInput) (*entity.ScoringSnapshot, error) {
	payload, err := json.Marshal(scoreRequest{
		Amount:          input.Amount,
		Duration:        input.Duration,
		InterestRate:    input.InterestRate,
		MonthlyIncome:   input.MonthlyIncome,
		Employed:        input.Employed,
		IsFunctionnaire: input.IsFunctionnaire,
		Age:             input.Age,
		Profession:      input.Profession,
		HasGuarantor:    input.HasGuarantor,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal scoring request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/score", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build scoring request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "scoring service call failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scoring response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("scoring service returned %d: %s", resp.StatusCode, string(body))
	}

	var decoded scoreResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.Wrap(err, "failed to decode scoring response")
	}
	if decoded.Error != "" {
		return nil, errors.Errorf("scoring service error: %s", decoded.Error)
	}

	risk := entity.RiskLevel(decoded.RiskLevel)
	if !risk.IsValid() {
		return nil, errors.Errorf("scoring service returned unknown risk level %q", decoded.RiskLevel)
	}

	return &entity.ScoringSnapshot{
		Score:                decoded.CreditScore,
		RiskLevel:            risk,
		ProbabilityDefault:   decoded.ProbabilityDefault,
		Recommendation:       decoded.Recommendations,
		RedFlags:             decoded.RedFlags,
		PositiveFactors:      decoded.PositiveFactors,
		MaxRecommendedAmount: decoded.MaxSuggestedAmount,
		SuggestedDuration:    decoded.SuggestedDuration,
		ScoredAt:             time.Now().UTC(),
	}, nil
}
