package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/mamadbah2/shiftpay/internal/config"
)

func newTestRepository(t *testing.T, handler http.HandlerFunc) *GoogleSheetRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	repo, err := NewGoogleSheetRepository(context.Background(),
		config.SheetsConfig{SpreadsheetID: "sheet-1"}, nil,
		option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)
	return repo
}

func TestAppendRows(t *testing.T) {
	var got struct {
		Values [][]interface{} `json:"values"`
	}
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/sheet-1/values/"))
		assert.True(t, strings.HasSuffix(r.URL.Path, ":append"))
		assert.Equal(t, "USER_ENTERED", r.URL.Query().Get("valueInputOption"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	})

	err := repo.AppendRows(context.Background(), "Payroll!A:I", [][]interface{}{
		{"2025-03", "E001"},
		{"2025-03", "E002"},
	})
	require.NoError(t, err)
	require.Len(t, got.Values, 2)
	assert.Equal(t, "E002", got.Values[1][1])
}

func TestAppendRows_NothingToWrite(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	require.NoError(t, repo.AppendRows(context.Background(), "Payroll!A:I", nil))
	assert.Error(t, repo.AppendRows(context.Background(), "", [][]interface{}{{"x"}}))
}

func TestReadRange(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"range":"Payroll!A1:A2","majorDimension":"ROWS","values":[["Month"],["2025-03"]]}`))
	})

	rows, err := repo.ReadRange(context.Background(), "Payroll!A:A")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-03", rows[1][0])
}

func TestReadRange_APIError(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission"}}`))
	})

	_, err := repo.ReadRange(context.Background(), "Payroll!A:A")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read range Payroll!A:A")
}
