package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patchBody struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func newRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	require.NoError(t, DecodeJSON(newRequest(`{"name":"Ann"}`), &v))
	assert.Equal(t, "Ann", v.Name)

	err := DecodeJSON(newRequest(`{"name":`), &v)
	assert.ErrorIs(t, err, ErrInvalidJSON)

	err = DecodeJSON(newRequest(``), &v)
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestDecodePatch(t *testing.T) {
	var body patchBody
	keys, err := DecodePatch(newRequest(`{"completed":true,"description":"x"}`), &body)
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"completed", "description"}, keys)
	require.NotNil(t, body.Completed)
	assert.True(t, *body.Completed)
	assert.Equal(t, "x", *body.Description)
}

func TestDecodePatch_ReportsUnknownKeys(t *testing.T) {
	var body patchBody
	keys, err := DecodePatch(newRequest(`{"owner":"someone"}`), &body)
	require.NoError(t, err)
	assert.Equal(t, []string{"owner"}, keys)
	assert.Nil(t, body.Completed)
}

func TestDecodePatch_StrictTypes(t *testing.T) {
	var body patchBody
	_, err := DecodePatch(newRequest(`{"completed":"true"}`), &body)
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = DecodePatch(newRequest(`[1,2]`), &body)
	assert.ErrorIs(t, err, ErrInvalidJSON)

	_, err = DecodePatch(newRequest(`null`), &body)
	assert.True(t, errors.Is(err, ErrInvalidJSON))
}

type validatedRequest struct {
	Email string `validate:"required,email"`
}

type selfValidating struct{ err error }

func (s selfValidating) Validate() error { return s.err }

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(validatedRequest{Email: "a@b.com"}))
	assert.Error(t, ValidateRequest(validatedRequest{Email: "nope"}))

	boom := errors.New("boom")
	assert.ErrorIs(t, ValidateRequest(selfValidating{err: boom}), boom)
	assert.NoError(t, ValidateRequest(selfValidating{}))
}
