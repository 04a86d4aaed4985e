package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorKind classifies failures so handlers can map them to an HTTP status.
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation"
	KindNotFound            ErrorKind = "not_found"
	KindConflict            ErrorKind = "conflict"
	KindUnauthorized        ErrorKind = "unauthorized"
	KindSessionExpired      ErrorKind = "session_expired"
	KindForbidden           ErrorKind = "forbidden"
	KindPaymentInitiation   ErrorKind = "payment_initiation"
	KindPaymentVerification ErrorKind = "payment_verification"
	KindInternal            ErrorKind = "internal"
)

// Machine-readable codes carried alongside the kind.
const (
	CodeCouponNotFound     = "COUPON_NOT_FOUND"
	CodeCouponExpired      = "COUPON_EXPIRED"
	CodeCouponInactive     = "COUPON_INACTIVE"
	CodeMinimumNotMet      = "MINIMUM_NOT_MET"
	CodeUsageExceeded      = "USAGE_EXCEEDED"
	CodeDuplicateFeedback  = "DUPLICATE_FEEDBACK"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeSlotUnavailable    = "SLOT_UNAVAILABLE"
	CodeDuplicateAccount   = "DUPLICATE_ACCOUNT"
	CodeAmountMismatch     = "AMOUNT_MISMATCH"
	CodeOrderMismatch      = "ORDER_MISMATCH"
	CodeSignatureMismatch  = "SIGNATURE_MISMATCH"
	CodeGatewayUnavailable = "GATEWAY_UNAVAILABLE"
	CodeLatePayment        = "LATE_PAYMENT"
)

// AppError is the error type returned by services for anything the caller can act on.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Field   string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code the error is reported with.
func (e *AppError) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized, KindSessionExpired:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindPaymentInitiation:
		return http.StatusBadGateway
	case KindPaymentVerification:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(field, message string) *AppError {
	return &AppError{Kind: KindValidation, Field: field, Message: message}
}

// NewRuleError reports a well-formed request that breaks a business rule (422).
func NewRuleError(code, field, message string) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Field: field, Message: message, Status: http.StatusUnprocessableEntity}
}

func NewNotFoundError(code, message string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message}
}

func NewConflictError(code, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func NewSessionExpiredError() *AppError {
	return &AppError{Kind: KindSessionExpired, Message: "Session expired, please sign in again"}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Kind: KindForbidden, Message: message}
}

func NewPaymentInitiationError(message string, err error) *AppError {
	return &AppError{Kind: KindPaymentInitiation, Code: CodeGatewayUnavailable, Message: message, Err: err}
}

func NewPaymentVerificationError(code, message string, err error) *AppError {
	return &AppError{Kind: KindPaymentVerification, Code: code, Message: message, Err: err}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// AsAppError unwraps err into an *AppError when one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == kind
}

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

// SuccessResponse wraps every successful payload.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondOK writes a success envelope.
func RespondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{Success: true, Data: data})
}

// RespondError maps err to its HTTP status and writes the error envelope.
// Errors outside the taxonomy are logged and reported as a generic 500.
func RespondError(c *gin.Context, err error) {
	logger := GetLogger()
	appErr, ok := AsAppError(err)
	if !ok {
		logger.Error("Unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal Server Error"})
		return
	}

	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		logger.Error(appErr.Message, zap.String("path", c.FullPath()), zap.String("kind", string(appErr.Kind)), zap.Error(appErr.Err))
	} else {
		logger.Debug(appErr.Message, zap.String("path", c.FullPath()), zap.String("kind", string(appErr.Kind)))
	}

	message := appErr.Message
	if appErr.Kind == KindInternal {
		message = "Internal Server Error"
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Message: message,
		Code:    appErr.Code,
		Field:   appErr.Field,
	})
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
				})
			}
		}()
		c.Next()
	}
}
