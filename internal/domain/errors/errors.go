// Package errors defines the application error contract: every failure the
// delivery layer can surface carries an HTTP code, a stable business code and
// a user-facing message in the product locale.
package errors

import (
	"net/http"

	"salaf/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Authentication-related errors
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Nom d'utilisateur ou mot de passe incorrect",
		"",
	)

	ErrTokenInvalid = NewBaseError(
		http.StatusUnauthorized,
		"TOKEN_INVALID",
		"Session invalide ou expirée, veuillez vous reconnecter",
		"",
	)

	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"Utilisateur introuvable",
		"",
	)

	ErrUserAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_EXISTS",
		"Ce nom d'utilisateur ou cet e-mail est déjà enregistré",
		"",
	)

	ErrAdminSecretInvalid = NewBaseError(
		http.StatusForbidden,
		"ADMIN_SECRET_INVALID",
		"Code administrateur invalide",
		"",
	)

	// Credit-request errors
	ErrCreditNotFound = NewBaseError(
		http.StatusNotFound,
		"CREDIT_NOT_FOUND",
		"Demande de crédit introuvable",
		"",
	)

	ErrInvalidTransition = NewBaseError(
		http.StatusConflict,
		"INVALID_TRANSITION",
		"Cette demande ne peut plus changer d'état",
		"",
	)

	ErrRejectionNotesRequired = NewBaseError(
		http.StatusBadRequest,
		"REJECTION_NOTES_REQUIRED",
		"Un motif est obligatoire pour rejeter une demande",
		"",
	)

	ErrNotRequestOwner = NewBaseError(
		http.StatusForbidden,
		"NOT_REQUEST_OWNER",
		"Vous n'êtes pas le titulaire de cette demande",
		"",
	)

	ErrMaintenanceMode = NewBaseError(
		http.StatusServiceUnavailable,
		"MAINTENANCE_MODE",
		"Le service est en maintenance, veuillez réessayer plus tard",
		"",
	)

	ErrScoringUnavailable = NewBaseError(
		http.StatusBadGateway,
		"SCORING_UNAVAILABLE",
		"Le service de scoring est indisponible, veuillez réessayer",
		"",
	)

	ErrOcrUnavailable = NewBaseError(
		http.StatusBadGateway,
		"OCR_UNAVAILABLE",
		"Le service de reconnaissance est indisponible, veuillez réessayer",
		"",
	)

	ErrOcrRecognitionFailed = NewBaseError(
		http.StatusUnprocessableEntity,
		"OCR_RECOGNITION_FAILED",
		"La carte n'a pas pu être lue, réessayez avec une image plus nette",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Les données saisies sont invalides",
		"",
	)

	// Transaction-related errors
	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"TRANSACTION_FAILED",
		"La transaction a échoué",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Erreur interne du système",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"Accès refusé",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Ressource introuvable",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		"CONFLICT",
		"Conflit de ressources",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Échec de l'exécution en base de données"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
