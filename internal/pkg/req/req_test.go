package req

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callchat/internal/pkg/errs"
)

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func newRequest(body, contentType string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	r.Header.Set("Content-Type", contentType)
	return r
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		code        int
	}{
		{name: "wrong content type", body: `{}`, contentType: "text/plain", code: errs.ErrUnsupportedMediaType},
		{name: "malformed", body: `{"email":`, contentType: "application/json", code: errs.ErrInvalidJSONFormat},
		{name: "unknown field", body: `{"mail":"a@b.c"}`, contentType: "application/json", code: errs.ErrInvalidJSONFormat},
		{name: "trailing content", body: `{"email":"a@b.c"}{}`, contentType: "application/json", code: errs.ErrExtraContentInBody},
		{
			name:        "too large",
			body:        `{"email":"` + strings.Repeat("a", int(MaxJSONBodySize)) + `"}`,
			contentType: "application/json",
			code:        errs.ErrRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst loginInput
			customErr := BindJSON(httptest.NewRecorder(), newRequest(tt.body, tt.contentType), &dst)
			require.NotNil(t, customErr)
			assert.Equal(t, tt.code, customErr.Code)
		})
	}
}

func TestBindJSON_OK(t *testing.T) {
	var dst loginInput
	customErr := BindJSON(httptest.NewRecorder(),
		newRequest(`{"email":"john@demo.com","password":"demo123"}`, "application/json; charset=utf-8"), &dst)

	require.Nil(t, customErr)
	assert.Equal(t, loginInput{Email: "john@demo.com", Password: "demo123"}, dst)
}
