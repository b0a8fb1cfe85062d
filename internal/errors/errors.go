// Package errors provides the application error catalogue. Services return
// AppErrors so handlers can answer with a stable code and a safe message
// without leaking internal details to clients.
package errors

import (
	stderrors "errors"
	"net/http"

	"centsible/internal/finance"
	"centsible/internal/ledger"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches another AppError by code, so a wrapped sentinel still satisfies
// errors.Is against the original.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// FromDomain translates errors of the finance core and the ledger reducer.
// Anything unrecognised is wrapped as an internal error.
func FromDomain(err error) *AppError {
	var appErr *AppError
	switch {
	case err == nil:
		return nil
	case stderrors.As(err, &appErr):
		return appErr
	case stderrors.Is(err, finance.ErrInvalidFrequency):
		return WithMessage(ErrInvalidFrequency, err.Error())
	case stderrors.Is(err, finance.ErrUnknownCategory):
		return WithMessage(ErrUnknownCategory, err.Error())
	case stderrors.Is(err, finance.ErrInvalidCustomName):
		return WithMessage(ErrUnknownCategory, err.Error())
	case stderrors.Is(err, ledger.ErrDuplicateCategory):
		return ErrDuplicateCategory
	case stderrors.Is(err, ledger.ErrInvalidAmount):
		return WithMessage(ErrInvalidInput, "Amount must be greater than zero")
	case stderrors.Is(err, ledger.ErrGoalOutOfRange):
		return ErrGoalReorderOutOfRange
	case stderrors.Is(err, ledger.ErrInvalidDirection):
		return WithMessage(ErrInvalidInput, "Direction must be up or down")
	case stderrors.Is(err, ledger.ErrInvalidGoal):
		return WithMessage(ErrInvalidInput, "Invalid goal category")
	case stderrors.Is(err, ledger.ErrNotFound):
		return ErrNotFound
	}
	return Wrap(ErrInternalServer, err)
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
	ErrTOTPRequired       = &AppError{Code: "TOTP_REQUIRED", Message: "A two-factor code is required", StatusCode: http.StatusUnauthorized}
	ErrInvalidTOTP        = &AppError{Code: "INVALID_TOTP", Message: "Invalid two-factor code", StatusCode: http.StatusUnauthorized}
	ErrTOTPNotSetUp       = &AppError{Code: "TOTP_NOT_SET_UP", Message: "Two-factor authentication has not been set up", StatusCode: http.StatusBadRequest}
	ErrInvalidAPIKey      = &AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
	ErrPipelineDisabled   = &AppError{Code: "PIPELINE_NOT_CONFIGURED", Message: "Pipeline endpoints are not configured", StatusCode: http.StatusServiceUnavailable}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Budget errors.
var (
	ErrInvalidFrequency     = &AppError{Code: "INVALID_FREQUENCY", Message: "Unsupported income frequency", StatusCode: http.StatusBadRequest}
	ErrUnknownCategory      = &AppError{Code: "UNKNOWN_CATEGORY", Message: "Unknown budget category", StatusCode: http.StatusBadRequest}
	ErrIncomeSourceNotFound = &AppError{Code: "INCOME_SOURCE_NOT_FOUND", Message: "Income source not found", StatusCode: http.StatusNotFound}
	ErrCategoryNotFound     = &AppError{Code: "BUDGET_CATEGORY_NOT_FOUND", Message: "Budget category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategory    = &AppError{Code: "DUPLICATE_CATEGORY", Message: "This budget category already exists", StatusCode: http.StatusConflict}
	ErrTransactionNotFound  = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrStatementInvalid     = &AppError{Code: "STATEMENT_INVALID", Message: "The bank statement could not be read", StatusCode: http.StatusBadRequest}
	ErrStatementTooLarge    = &AppError{Code: "STATEMENT_TOO_LARGE", Message: "The bank statement exceeds 5 MB", StatusCode: http.StatusRequestEntityTooLarge}
	ErrReceiptUnreadable    = &AppError{Code: "RECEIPT_UNREADABLE", Message: "No total could be found on the receipt", StatusCode: http.StatusUnprocessableEntity}
)

// Goal errors.
var (
	ErrGoalNotFound          = &AppError{Code: "GOAL_NOT_FOUND", Message: "Savings goal not found", StatusCode: http.StatusNotFound}
	ErrGoalReorderOutOfRange = &AppError{Code: "GOAL_REORDER_OUT_OF_RANGE", Message: "The goal cannot be moved any further", StatusCode: http.StatusBadRequest}
)

// Bill errors.
var (
	ErrBillNotFound = &AppError{Code: "BILL_NOT_FOUND", Message: "Bill reminder not found", StatusCode: http.StatusNotFound}
)

// Household errors.
var (
	ErrHouseholdNotFound  = &AppError{Code: "HOUSEHOLD_NOT_FOUND", Message: "Household not found", StatusCode: http.StatusNotFound}
	ErrNotHouseholdMember = &AppError{Code: "NOT_HOUSEHOLD_MEMBER", Message: "You are not a member of this household", StatusCode: http.StatusForbidden}
	ErrInvitationInvalid  = &AppError{Code: "INVITATION_INVALID", Message: "This invitation is invalid or has expired", StatusCode: http.StatusBadRequest}
	ErrAlreadyMember      = &AppError{Code: "ALREADY_MEMBER", Message: "User is already a member of this household", StatusCode: http.StatusConflict}
	ErrCannotRemoveOwner  = &AppError{Code: "CANNOT_REMOVE_OWNER", Message: "The household owner cannot be removed", StatusCode: http.StatusBadRequest}
)

// Billing errors.
var (
	ErrBillingNotConfigured    = &AppError{Code: "BILLING_NOT_CONFIGURED", Message: "Billing is not configured", StatusCode: http.StatusServiceUnavailable}
	ErrWebhookSignatureInvalid = &AppError{Code: "WEBHOOK_SIGNATURE_INVALID", Message: "Invalid webhook signature", StatusCode: http.StatusBadRequest}
	ErrSubscriptionNotFound    = &AppError{Code: "SUBSCRIPTION_NOT_FOUND", Message: "No subscription found", StatusCode: http.StatusNotFound}
)
