package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound             = errors.New("resource not found")
	ErrAlreadyExists        = errors.New("resource already exists")
	ErrInvalidInput         = errors.New("invalid input")
	ErrBadRequest           = errors.New("bad request")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTokenExpired         = errors.New("token expired")
	ErrAccountSuspended     = errors.New("account suspended")
	ErrBelowMinimum         = errors.New("amount below minimum")
	ErrUpstream             = errors.New("upstream service failure")
	ErrConfirmationRequired = errors.New("confirmation required")
)

// Machine readable error codes
const (
	CodeBadRequest           = "BAD_REQUEST"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeNotFound             = "NOT_FOUND"
	CodeConflict             = "CONFLICT"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeAccountSuspended     = "ACCOUNT_SUSPENDED"
	CodeSignInRequired       = "SIGN_IN_REQUIRED"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
	CodeUpstream             = "UPSTREAM_ERROR"
	CodeInternalError        = "INTERNAL_ERROR"
	CodeTooManyRequests      = "TOO_MANY_REQUESTS"
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

// Suspended is returned when a suspended profile signs in or calls a member route
func Suspended() *AppError {
	return NewAppError(http.StatusForbidden, CodeAccountSuspended, "account suspended", ErrAccountSuspended)
}

// SignInRequired is returned for exclusive listings requested anonymously
func SignInRequired(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeSignInRequired, message, ErrUnauthorized)
}

// ConfirmationRequired is returned for destructive calls without explicit confirmation
func ConfirmationRequired(message string) *AppError {
	return NewAppError(http.StatusPreconditionRequired, CodeConfirmationRequired, message, ErrConfirmationRequired)
}

// Upstream surfaces the message of a failed collaborator (database, storage, mail, gateway)
func Upstream(err error) *AppError {
	message := "upstream service failure"
	if err != nil {
		message = err.Error()
	}
	return NewAppError(http.StatusBadGateway, CodeUpstream, message, errors.Join(ErrUpstream, err))
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

func InternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, nil)
}

func TooManyRequests(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, CodeTooManyRequests, message, nil)
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
		Err:     err,
	}
}

// As extracts an *AppError from err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
