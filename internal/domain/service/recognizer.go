package service

import "context"

// RecognitionResult is the structured output of an ID-card scan. Fields the
// recognizer could not read are left empty.
type RecognitionResult struct {
	FullName   string
	Address    string
	Cin        string
	BirthDate  string // Original card format, dd/mm/yyyy.
	BirthPlace string
}

// CardRecognizer sends a photographed ID card to the external OCR service.
// A scan is single-shot: a failed call leaves no state behind and the caller
// simply retries with a clearer image.
type CardRecognizer interface {
	ScanIDCard(ctx context.Context, imageBase64, cardType string) (*RecognitionResult, error)
}
