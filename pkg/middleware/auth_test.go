package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func authProbe(t *testing.T, token, header string) *httptest.ResponseRecorder {
	t.Helper()

	handler := BearerToken(token, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/query/ask", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}

func TestBearerToken(t *testing.T) {
	testCases := []struct {
		name   string
		token  string
		header string
		status int
	}{
		{
			name:   "empty token disables the check",
			token:  "",
			header: "",
			status: http.StatusOK,
		},
		{
			name:   "valid token",
			token:  "sekret",
			header: "Bearer sekret",
			status: http.StatusOK,
		},
		{
			name:   "token without bearer prefix",
			token:  "sekret",
			header: "sekret",
			status: http.StatusOK,
		},
		{
			name:   "missing header",
			token:  "sekret",
			header: "",
			status: http.StatusUnauthorized,
		},
		{
			name:   "wrong token",
			token:  "sekret",
			header: "Bearer nope",
			status: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := authProbe(t, tc.token, tc.header)
			assert.Equal(t, tc.status, rr.Code)
		})
	}
}
