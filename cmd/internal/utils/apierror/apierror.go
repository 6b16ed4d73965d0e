package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is what services hand back to routes. The concrete value is
// JSON-marshalable and carries its own HTTP status, so routes can do
// c.JSON(err.Code(), err) without inspecting it.
type ErrorResponse interface {
	error
	Code() int
}

type apiError struct {
	Status  int      `json:"-"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

func (e *apiError) Code() int     { return e.Status }
func (e *apiError) Error() string { return e.Message }

func NewSimple(code int, message string) ErrorResponse {
	return &apiError{Status: code, Message: message}
}

var (
	InternalServerError   = NewSimple(http.StatusInternalServerError, "Internal server error")
	NotFoundError         = NewSimple(http.StatusNotFound, "Resource not found")
	MalformedBodyError    = NewSimple(http.StatusBadRequest, "Malformed request body")
	ForbiddenError        = NewSimple(http.StatusForbidden, "You do not have permission to perform this action")
	InvalidAuthTokenError = NewSimple(http.StatusUnauthorized, "Invalid or missing auth token")

	// InvalidIntervalError rejects zero or negative durations before anything
	// touches storage.
	InvalidIntervalError = NewSimple(http.StatusBadRequest, "End time must be after start time")

	AlreadyParticipatingError = NewSimple(http.StatusConflict, "You are already participating in this event")
	UserAlreadyExistsError    = NewSimple(http.StatusConflict, "A user with this email already exists")
	RoomAlreadyExistsError    = NewSimple(http.StatusConflict, "A room with this name already exists")
	MultiDayBookingError      = NewSimple(http.StatusBadRequest, "Room bookings must start and end on the same day")
)

// NewBookingConflictError names the interval that is in the way, so the caller
// can pick a different slot instead of guessing.
func NewBookingConflictError(date, start, end string) ErrorResponse {
	return NewSimple(http.StatusConflict,
		fmt.Sprintf("Room is already booked %s-%s on %s", start, end, date))
}

func NewMissingParamError(name string) ErrorResponse {
	return NewSimple(http.StatusBadRequest, fmt.Sprintf("Missing required parameter '%s'", name))
}

func NewInvalidParamTypeError(name, expected string) ErrorResponse {
	return NewSimple(http.StatusBadRequest,
		fmt.Sprintf("Parameter '%s' must be of type %s", name, expected))
}

// FromValidationError maps go-playground validation failures to a 400 listing
// every offending field and the rule it broke.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MalformedBodyError
	}

	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = fmt.Sprintf("%s: failed '%s' validation", fe.Field(), fe.Tag())
	}
	return &apiError{
		Status:  http.StatusBadRequest,
		Message: "Request validation failed",
		Fields:  fields,
	}
}
