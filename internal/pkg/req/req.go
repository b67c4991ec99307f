/*
Package req binds HTTP request bodies into Go values with strict validation.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"callchat/internal/pkg/errs"
)

// MaxJSONBodySize caps the size of JSON request bodies (1 MB).
const MaxJSONBodySize int64 = 1 << 20

// BindJSON decodes the request body into dst. It requires an application/json
// Content-Type, rejects unknown fields and trailing content, and caps the body size.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
