package validator

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Username string `validate:"required,username"`
}

func TestValidate_Success(t *testing.T) {
	s := testStruct{Name: "Alice", Email: "alice@example.com", Username: "alice.doe"}
	err := Validate(s)
	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	s := testStruct{Email: "alice@example.com", Username: "alice"}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Name")
	assert.Equal(t, "is required", fields["Name"])
}

func TestValidate_InvalidEmail(t *testing.T) {
	s := testStruct{Name: "Alice", Email: "not-an-email", Username: "alice"}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Email")
	assert.Equal(t, "must be a valid email address", fields["Email"])
}

func TestValidate_Username(t *testing.T) {
	valid := []string{"alice", "alice.doe", "a-b_c", "user42", "0xdev"}
	for _, u := range valid {
		s := testStruct{Name: "Alice", Email: "alice@example.com", Username: u}
		assert.NoError(t, Validate(s), "username %q should be valid", u)
	}

	invalid := []string{"Al", "UPPER", "has space", "-leading", "a", "ünïcode"}
	for _, u := range invalid {
		s := testStruct{Name: "Alice", Email: "alice@example.com", Username: u}
		assert.Error(t, Validate(s), "username %q should be rejected", u)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	s := testStruct{} // missing everything
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Name")
	assert.Contains(t, fields, "Email")
	assert.Contains(t, fields, "Username")
}

func TestValidationError_ErrorString(t *testing.T) {
	s := testStruct{}
	err := Validate(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Name'")
	assert.Contains(t, err.Error(), "is required")
}

func TestDecodeAndValidate(t *testing.T) {
	body := `{"Name":"Alice","Email":"alice@example.com","Username":"alice"}`
	r, _ := http.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var dst testStruct
	require.NoError(t, DecodeAndValidate(r, &dst))
	assert.Equal(t, "Alice", dst.Name)
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	r, _ := http.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))

	var dst testStruct
	err := DecodeAndValidate(r, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
