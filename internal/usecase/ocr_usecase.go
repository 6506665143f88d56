package usecase

import (
	"context"

	"salaf/internal/domain/service"
)

// IdentityDraft holds the identity fields of a request form that the OCR
// flow can pre-fill. Values the applicant already typed are authoritative.
type IdentityDraft struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	Cin        string `json:"cin"`
	BirthDate  string `json:"birthDate"`
	BirthPlace string `json:"birthPlace"`
}

// Merge fills only the empty fields of the draft from a recognition result.
// Recognized data never overwrites a value the applicant already typed.
func (d IdentityDraft) Merge(result *service.RecognitionResult) IdentityDraft {
	if result == nil {
		return d
	}

	if d.FullName == "" {
		d.FullName = result.FullName
	}
	if d.Address == "" {
		d.Address = result.Address
	}
	if d.Cin == "" {
		d.Cin = result.Cin
	}
	if d.BirthDate == "" {
		d.BirthDate = result.BirthDate
	}
	if d.BirthPlace == "" {
		d.BirthPlace = result.BirthPlace
	}

	return d
}

// ScanInput carries one photographed ID card and the current form draft.
type ScanInput struct {
	ImageBase64 string        `json:"imageBase64" validate:"required"`
	CardType    string        `json:"cardType" validate:"omitempty,oneof=CNIE"`
	Draft       IdentityDraft `json:"draft"`
}

// ScanOutput returns what was recognized and the merged draft. On failure no
// output is produced and the caller's draft is untouched.
type ScanOutput struct {
	Success    bool          `json:"success"`
	FullName   string        `json:"fullName,omitempty"`
	Address    string        `json:"address,omitempty"`
	Cin        string        `json:"cin,omitempty"`
	BirthDate  string        `json:"birthDate,omitempty"`
	BirthPlace string        `json:"birthPlace,omitempty"`
	Draft      IdentityDraft `json:"draft"`
}

// OcrUsecase is the OCR-assisted form filler.
type OcrUsecase interface {
	// Scan recognizes the card and merges the result into the draft,
	// filling only empty fields. Retryable; a new scan supersedes any
	// previous one.
	Scan(ctx context.Context, input *ScanInput) (*ScanOutput, error)
}
