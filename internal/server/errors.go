package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	customerdomain "github.com/smallbiznis/rechargedesk/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/rechargedesk/internal/invoice/domain"
	"github.com/smallbiznis/rechargedesk/internal/money"
	plandomain "github.com/smallbiznis/rechargedesk/internal/plan/domain"
	reportingdomain "github.com/smallbiznis/rechargedesk/internal/reporting/domain"
	saledomain "github.com/smallbiznis/rechargedesk/internal/sale/domain"
	subscriptiondomain "github.com/smallbiznis/rechargedesk/internal/subscription/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

var validationErrors = []error{
	ErrInvalidRequest,

	customerdomain.ErrInvalidID,
	customerdomain.ErrInvalidName,
	customerdomain.ErrInvalidPhone,
	customerdomain.ErrInvalidEmail,

	plandomain.ErrInvalidID,
	plandomain.ErrInvalidName,
	plandomain.ErrInvalidCode,
	plandomain.ErrInvalidPrice,
	plandomain.ErrInvalidDuration,

	subscriptiondomain.ErrInvalidID,
	subscriptiondomain.ErrInvalidCustomer,
	subscriptiondomain.ErrInvalidPlan,
	subscriptiondomain.ErrInvalidStatus,

	saledomain.ErrInvalidID,
	saledomain.ErrInvalidCustomer,
	saledomain.ErrInvalidPlan,
	saledomain.ErrInvalidAmount,
	saledomain.ErrInvalidAmountPaid,
	saledomain.ErrInvalidPaymentMethod,
	saledomain.ErrInvalidPaymentStatus,
	saledomain.ErrInvalidOrderStatus,
	saledomain.ErrInvalidBusinessType,
	saledomain.ErrInvalidFare,
	saledomain.ErrInvalidDateRange,
	saledomain.ErrNotRecharge,

	invoicedomain.ErrInvalidID,
	invoicedomain.ErrInvalidCustomer,
	invoicedomain.ErrInvalidSale,
	invoicedomain.ErrInvalidStatus,
	invoicedomain.ErrInvalidItems,
	invoicedomain.ErrInvalidDescription,
	invoicedomain.ErrInvalidDueDate,
	invoicedomain.ErrInvalidTaxRate,
	invoicedomain.ErrInvalidTax,
	invoicedomain.ErrMissingEmail,

	money.ErrInvalidQuantity,
	money.ErrInvalidUnitPrice,

	reportingdomain.ErrInvalidDateRange,
	reportingdomain.ErrInvalidFormat,
}

var notFoundErrors = []error{
	ErrNotFound,
	customerdomain.ErrNotFound,
	plandomain.ErrNotFound,
	subscriptiondomain.ErrNotFound,
	saledomain.ErrNotFound,
	invoicedomain.ErrNotFound,
	gorm.ErrRecordNotFound,
}

var conflictErrors = []error{
	ErrConflict,
	plandomain.ErrDuplicateCode,
	subscriptiondomain.ErrInvalidTransition,
	invoicedomain.ErrInvoicePaid,
}

// fieldOverrides names the request field for codes that do not follow invalid_<field>.
var fieldOverrides = map[string]string{
	invoicedomain.ErrMissingEmail.Error(): "email",
	saledomain.ErrNotRecharge.Error():     "business_type",
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var itemErr *invoicedomain.ItemError
	if errors.As(err, &itemErr) {
		code := validationErrorCode(itemErr.Err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   "items[" + strconv.Itoa(itemErr.Index) + "]." + validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	if matchesAny(err, validationErrors) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case matchesAny(err, notFoundErrors):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case matchesAny(err, conflictErrors):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the access log with the same type the client sees.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func validationErrorCode(err error) string {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if field, ok := fieldOverrides[code]; ok {
		return field
	}
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "missing_customer_email":
		return "customer has no email address"
	case "not_recharge":
		return "sale is not a recharge"
	default:
		return "invalid value"
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, invoicedomain.ErrInvoicePaid):
		return "invoice is already paid"
	case errors.Is(err, plandomain.ErrDuplicateCode):
		return "plan code already exists"
	case errors.Is(err, subscriptiondomain.ErrInvalidTransition):
		return "subscription cannot move to that status"
	default:
		return "conflict"
	}
}
