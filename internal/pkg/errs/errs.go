package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"callchat/internal/pkg/logx"
)

// CustomError carries a business code, a client-facing message and the HTTP status
// used when the error is written as a response.
type CustomError struct {
	Code    int
	Message string
	Status  int
}

// Error implements the error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError returns the CustomError registered for code. details are printf arguments
// for messages containing verbs; for ErrUnknown the first detail may be the underlying
// error, which is logged. Unregistered codes degrade to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("unknown error code %d", code),
			"Unknown error code requested",
			"requested_code", code,
		)
		templateErr = errorMap[ErrUnknown]
	}

	customErr := templateErr
	if customErr.Status == 0 {
		customErr.Status = http.StatusBadRequest
	}

	switch {
	case code == ErrUnknown && len(details) > 0:
		if originalErr, ok := details[0].(error); ok {
			logx.Error(originalErr, "Handling ErrUnknown with underlying error")
		}
	case len(details) > 0 && strings.Contains(customErr.Message, "%"):
		customErr.Message = fmt.Sprintf(customErr.Message, details...)
	case len(details) > 0:
		logx.Warn("Error details ignored: message has no formatting verbs.", "code", code)
	}

	return &customErr
}

// From converts any error into a *CustomError, keeping CustomErrors as they are
// and mapping everything else to ErrUnknown.
func From(err error) *CustomError {
	if err == nil {
		return nil
	}

	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr
	}

	return NewError(ErrUnknown, err)
}
