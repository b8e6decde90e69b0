package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalString(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantPresent bool
		wantValue   *string
	}{
		{name: "absent", input: `{}`},
		{name: "null", input: `{"parentId": null}`, wantPresent: true},
		{name: "value", input: `{"parentId": "abc"}`, wantPresent: true, wantValue: strPtr("abc")},
		{name: "empty string", input: `{"parentId": ""}`, wantPresent: true, wantValue: strPtr("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dest struct {
				ParentID OptionalString `json:"parentId"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.input), &dest))
			assert.Equal(t, tt.wantPresent, dest.ParentID.Present)
			assert.Equal(t, tt.wantValue, dest.ParentID.Value)
		})
	}
}

func TestOptionalString_Marshal(t *testing.T) {
	type patch struct {
		ParentID OptionalString `json:"parentId,omitzero"`
	}
	tests := []struct {
		name  string
		field OptionalString
		want  string
	}{
		{name: "absent", field: OptionalString{}, want: `{}`},
		{name: "null", field: Null(), want: `{"parentId":null}`},
		{name: "value", field: Some("abc"), want: `{"parentId":"abc"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(patch{ParentID: tt.field})
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(out))
		})
	}
}

func TestRespondErrorWithExtras(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithExtras(rec, http.StatusConflict, "has children", map[string]interface{}{
		"children": []string{"a"},
		"status":   "ignored",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(http.StatusConflict), body["status"])
	assert.Equal(t, "Conflict", body["title"])
	assert.Equal(t, []interface{}{"a"}, body["children"])
}

func TestParseJSON(t *testing.T) {
	var dest map[string]string

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"b"}`))
	require.NoError(t, ParseJSON(rec, req, &dest))
	assert.Equal(t, "b", dest["a"])

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.Error(t, ParseJSON(rec, req, &dest))

	big := `{"a":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	assert.ErrorIs(t, ParseJSON(rec, req, &dest), ErrBodyTooLarge)
}

func TestQueryParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&force=true&bad=x", nil)

	n, err := QueryInt(req, "limit", 10)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = QueryInt(req, "missing", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	_, err = QueryInt(req, "bad", 10)
	assert.Error(t, err)

	force, err := QueryBool(req, "force")
	require.NoError(t, err)
	assert.True(t, force)

	_, err = QueryBool(req, "bad")
	assert.Error(t, err)
}

func strPtr(s string) *string { return &s }
