// Package ocr integrates the external CNIE recognition service.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"salaf/config"
	"salaf/internal/domain/service"

	"github.com/pkg/errors"
)

// httpRecognizer calls the OCR service over HTTP. One scan is one request;
// there is nothing to cancel or resume, a new scan simply supersedes the
// previous one.
type httpRecognizer struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRecognizer is the constructor for httpRecognizer.
func NewHTTPRecognizer(cfg *config.Config) service.CardRecognizer {
	timeout := cfg.Ocr.Timeout
	if timeout == 0 {
		// Recognition of a full-resolution photo can be slow.
		timeout = 2 * time.Minute
	}

	return &httpRecognizer{
		baseURL: cfg.Ocr.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type scanRequest struct {
	ImageBase64 string `json:"imageBase64"`
	CardType    string `json:"cardType"`
}

type scanResponse struct {
	Success      bool   `json:"success"`
	FullName     string `json:"fullName"`
	Address      string `json:"address"`
	Cin          string `json:"cin"`
	BirthDate    string `json:"birthDate"`
	BirthPlace   string `json:"birthPlace"`
	ErrorMessage string `json:"errorMessage"`
}

// ScanIDCard submits the photographed card and returns the recognized fields.
func (r *httpRecognizer) ScanIDCard(ctx context.Context, imageBase64, cardType string) (*service.RecognitionResult, error) {
	payload, err := json.Marshal(scanRequest{ImageBase64: imageBase64, CardType: cardType})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal scan request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/ocr/scan-cnie", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build scan request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "ocr service call failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read ocr response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("ocr service returned %d: %s", resp.StatusCode, string(body))
	}

	var decoded scanResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.Wrap(err, "failed to decode ocr response")
	}
	if !decoded.Success {
		return nil, errors.Errorf("ocr recognition failed: %s", decoded.ErrorMessage)
	}

	return &service.RecognitionResult{
		FullName:   decoded.FullName,
		Address:    decoded.Address,
		Cin:        decoded.Cin,
		BirthDate:  decoded.BirthDate,
		BirthPlace: decoded.BirthPlace,
	}, nil
}
