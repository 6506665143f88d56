package impl

import (
	"context"
	"log/slog"

	deliverycontext "salaf/internal/delivery/context"
	domainerrors "salaf/internal/domain/errors"
	"salaf/internal/domain/service"
	"salaf/internal/usecase"

	"go.uber.org/fx"
)

// ocrService implements the OCR-assisted form filler. The recognizer call is
// single-shot; on any failure the caller's draft is returned untouched as
// part of the error path and the user simply re-uploads a clearer image.
type ocrService struct {
	recognizer service.CardRecognizer
	logger     *slog.Logger
}

// OcrServiceParams holds dependencies for the OCR service, injected by Fx.
type OcrServiceParams struct {
	fx.In

	Recognizer service.CardRecognizer
	Logger     *slog.Logger
}

// NewOcrService is the constructor for ocrService.
func NewOcrService(params OcrServiceParams) usecase.OcrUsecase {
	return &ocrService{
		recognizer: params.Recognizer,
		logger:     params.Logger,
	}
}

func (srv *ocrService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Scan recognizes the card and merges the result into the draft. Only empty
// draft fields are filled: recognized data never overwrites what the
// applicant already typed.
func (srv *ocrService) Scan(ctx context.Context, input *usecase.ScanInput) (*usecase.ScanOutput, error) {
	cardType := input.CardType
	if cardType == "" {
		cardType = "CNIE"
	}

	result, err := srv.recognizer.ScanIDCard(ctx, input.ImageBase64, cardType)
	if err != nil {
		srv.log(ctx).Warn("ID card scan failed", slog.Any("error", err))

		return nil, domainerrors.ErrOcrUnavailable.WrapMessage("scan failed")
	}
	if result == nil || empty(result) {
		return nil, domainerrors.ErrOcrRecognitionFailed
	}

	merged := input.Draft.Merge(result)
	srv.log(ctx).Info("ID card scanned", slog.Bool("cinRecognized", result.Cin != ""))

	return &usecase.ScanOutput{
		Success:    true,
		FullName:   result.FullName,
		Address:    result.Address,
		Cin:        result.Cin,
		BirthDate:  result.BirthDate,
		BirthPlace: result.BirthPlace,
		Draft:      merged,
	}, nil
}

func empty(r *service.RecognitionResult) bool {
	return r.FullName == "" && r.Address == "" && r.Cin == "" && r.BirthDate == "" && r.BirthPlace == ""
}
