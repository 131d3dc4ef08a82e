package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestRespondErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{NewError(ErrValidation, "bad date"), http.StatusBadRequest, CodeValidation},
		{NewError(ErrNotFound, "Document not found"), http.StatusNotFound, CodeNotFound},
		{NewError(ErrForbidden, "Forbidden"), http.StatusForbidden, CodeForbidden},
		{NewError(ErrConflict, "duplicate"), http.StatusConflict, CodeConflict},
		{NewError(ErrUnauthorized, "Unauthorized"), http.StatusUnauthorized, CodeUnauthorized},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		assert.Equal(t, tc.status, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, tc.code, body.Code)
		assert.Equal(t, tc.err.Error(), body.Message)
	}
}

func TestRespondErrorKeepsDomainMessageWhenWrapped(t *testing.T) {
	sentinel := NewCodedError(ErrValidation, "ALREADY_BOOKED", "Already booked")
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("book document 7: %w", sentinel))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Already booked", body.Message)
	assert.Equal(t, "ALREADY_BOOKED", body.Code)
}

func TestRespondErrorHidesInternalFailures(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("pg: connection reset by peer"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, CodeInternal, body.Code)
	assert.NotContains(t, body.Message, "connection reset")
}

func TestDecodeJSONRejectsMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	var target map[string]any
	err := DecodeJSON(req, &target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	err = DecodeJSON(req, &target)
	assert.ErrorIs(t, err, ErrValidation)
}
