package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moovs/dataprep/internal/config"
	"github.com/moovs/dataprep/internal/schema"
)

func newTestRouter() http.Handler {
	cfg := &config.Config{}
	cfg.Placeholder.BasePhone = "+1 202-555-0100"
	cfg.Upload.MaxFileMB = 8
	cfg.Upload.MaxFiles = 10
	h := NewHandlers(NewSessionStore(), nil, cfg)
	return SetupRoutes(h)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doUpload(t *testing.T, router http.Handler, path string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, router http.Handler, workflow string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/sessions", map[string]string{
		"workflow":   workflow,
		"operatorId": "op-test-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["sessionId"])
	return resp["sessionId"]
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter()
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestCreateSessionValidation(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/sessions", map[string]string{
		"workflow": "invoices", "operatorId": "op-1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/sessions", map[string]string{
		"workflow": "contacts",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "operatorId")
}

func TestUnknownSession(t *testing.T) {
	router := newTestRouter()
	rec := doJSON(t, router, http.MethodPost, "/api/sessions/nope/autofix", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactsWorkflow(t *testing.T) {
	router := newTestRouter()
	id := createSession(t, router, "contacts")

	csvData := "First Name,Last Name,Cell Phone,Email Addresses\n" +
		"John,Smith,2065550199,john@example.com\n" +
		"John,Smith,(206) 555-0199,\n" +
		"Jane,Doe,,\n"
	rec := doUpload(t, router, "/api/sessions/"+id+"/upload", map[string]string{"contacts.csv": csvData})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp processResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Stats.LimoFormat)
	assert.Equal(t, 1, resp.Stats.FileCount)
	assert.Equal(t, 3, resp.Stats.TotalRows)
	assert.Equal(t, 3, resp.Stats.RecordCount)
	require.Len(t, resp.DuplicateGroups, 1)
	assert.Equal(t, "phone", resp.DuplicateGroups[0].MatchReason)

	// Two rows are missing an email; both carry a suggested placeholder.
	suggestions := 0
	for _, is := range resp.Issues {
		if is.Field == "email" && is.SuggestedValue != "" {
			suggestions++
		}
	}
	assert.Equal(t, 2, suggestions)

	rec = doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/autofix", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Stats.FixedFields)
	for _, is := range resp.Issues {
		if is.Field == "email" {
			assert.Equal(t, schema.IssueInfo, is.Type, "fixed emails should report as info")
		}
	}

	rec = doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/duplicates/resolve-all", map[string]interface{}{
		"decisions": []interface{}{},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Stats.RecordCount)
	assert.Equal(t, 1, resp.Stats.MergedRows)
	assert.Empty(t, resp.DuplicateGroups)

	rec = doJSON(t, router, http.MethodGet, "/api/sessions/"+id+"/preview?limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var preview struct {
		Headers []string   `json:"headers"`
		Rows    [][]string `json:"rows"`
		Total   int        `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Equal(t, schema.ContactHeaders, preview.Headers)
	assert.Equal(t, 2, preview.Total)

	rec = doJSON(t, router, http.MethodGet, "/api/sessions/"+id+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "moovs-contacts-")
	assert.True(t, strings.HasPrefix(rec.Body.String(), strings.Join(schema.ContactHeaders, ",")))
	assert.Contains(t, rec.Body.String(), "op-test-1")
}

func TestAutoFixLeavesInvalidFields(t *testing.T) {
	router := newTestRouter()
	id := createSession(t, router, "contacts")

	// Area codes cannot start with 1, so the phone is invalid yet still
	// carries a +1-prefixed suggestion.
	csvData := "First Name,Last Name,Cell Phone,Email Addresses\n" +
		"John,Smith,1234567890,john@example.com\n"
	rec := doUpload(t, router, "/api/sessions/"+id+"/upload", map[string]string{"contacts.csv": csvData})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp processResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Issues, 1)
	require.Equal(t, schema.IssueInvalid, resp.Issues[0].Type)
	require.Equal(t, "mobilePhone", resp.Issues[0].Field)
	require.NotEmpty(t, resp.Issues[0].SuggestedValue)

	// Auto-fix only fills missing fields; the invalid phone keeps its
	// original value and its issue stays for the user to act on.
	rec = doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/autofix", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Stats.FixedFields)
	require.Len(t, resp.Issues, 1)
	assert.Equal(t, schema.IssueInvalid, resp.Issues[0].Type)
	assert.Equal(t, "mobilePhone", resp.Issues[0].Field)

	rec = doJSON(t, router, http.MethodGet, "/api/sessions/"+id+"/export", nil)
	assert.Contains(t, rec.Body.String(), "1234567890")
	assert.NotContains(t, rec.Body.String(), "+11234567890")
}

func TestResolveSingleGroup(t *testing.T) {
	router := newTestRouter()
	id := createSession(t, router, "contacts")

	csvData := "First Name,Last Name,Cell Phone,Email Addresses\n" +
		"John,Smith,2065550199,john@example.com\n" +
		"Johnny,Smith,2065550199,johnny@example.com\n"
	rec := doUpload(t, router, "/api/sessions/"+id+"/upload", map[string]string{"contacts.csv": csvData})
	require.Equal(t, http.StatusOK, rec.Code)

	// Keep the second record of the only group.
	rec = doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/duplicates/resolve", map[string]int{
		"groupIndex": 0, "keepIndex": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp processResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Stats.RecordCount)

	rec = doJSON(t, router, http.MethodGet, "/api/sessions/"+id+"/export", nil)
	assert.Contains(t, rec.Body.String(), "Johnny")
	assert.NotContains(t, rec.Body.String(), "john@example.com")

	// Out-of-range group index is a client error.
	rec = doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/duplicates/resolve", map[string]int{
		"groupIndex": 5, "keepIndex": 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetMappings(t *testing.T) {
	router := newTestRouter()
	id := createSession(t, router, "contacts")

	// Mappings before any upload are rejected.
	rec := doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/mappings", map[string]interface{}{
		"mappings": []map[string]string{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	csvData := "Given Name,Surname,Telephone\nJohn,Smith,2065550199\n"
	rec = doUpload(t, router, "/api/sessions/"+id+"/upload", map[string]string{"export.csv": csvData})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp processResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Stats.LimoFormat)
	assert.Equal(t, 0, resp.Stats.RecordCount, "nothing maps automatically from unknown headers")

	rec = doJSON(t, router, http.MethodPost, "/api/sessions/"+id+"/mappings", map[string]interface{}{
		"mappings": []map[string]string{
			{"sourceColumn": "Given Name", "targetField": "firstName"},
			{"sourceColumn": "Surname", "targetField": "lastName"},
			{"sourceColumn": "Telephone", "targetField": "mobilePhone"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Stats.RecordCount)
}

func TestReservationsWorkflow(t *testing.T) {
	router := newTestRouter()
	id := createSession(t, router, "reservations")

	contacts := "First Name,Last Name,Email,Cell Phone\nJohn,Smith,john@example.com,2065550199\n"
	rec := doUpload(t, router, "/api/sessions/"+id+"/contacts-file", map[string]string{"prior.csv": contacts})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"contactsLoaded":1`)

	reservations := "Conf #,PU Date,PU Time,Passenger Name,Pick Up Address,Drop Off Address,Vehicle Type,Pax #\n" +
		"1001,3/15/2025,4:34 PM,John Smith,123 Pine St,SEA Airport,Sedan,2\n"
	rec = doUpload(t, router, "/api/sessions/"+id+"/upload", map[string]string{"trips.csv": reservations})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp processResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Stats.LimoFormat)
	assert.Equal(t, 1, resp.Stats.RecordCount)
	require.NotNil(t, resp.LookupStats)
	assert.Greater(t, resp.LookupStats.NameMatches, 0)

	rec = doJSON(t, router, http.MethodGet, "/api/sessions/"+id+"/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "moovs-reservations-")
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, strings.Join(schema.ReservationHeaders, ",")))
	// The passenger name column was split and the prior contact's phone
	// resolved in.
	assert.Contains(t, body, "John,Smith")
	assert.Contains(t, body, "+1 206-555-0199")
}

func TestContactsFileWrongWorkflow(t *testing.T) {
	router := newTestRouter()
	id := createSession(t, router, "contacts")

	contacts := "First Name,Last Name,Email\nJohn,Smith,john@example.com\n"
	rec := doUpload(t, router, "/api/sessions/"+id+"/contacts-file", map[string]string{"prior.csv": contacts})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadMixedExportTypes(t *testing.T) {
	router := newTestRouter()
	id := createSession(t, router, "contacts")

	rec := doUpload(t, router, "/api/sessions/"+id+"/upload", map[string]string{
		"a.csv": "First Name,Last Name,Cell Phone,Email Addresses\nJohn,Smith,1,j@x.com\n",
		"b.csv": "Conf #,PU Date,PU Time,Passenger Name\n1,2,3,4\n",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "same export type")
}

func TestPlaceholderEmails(t *testing.T) {
	router := newTestRouter()
	id := createSession(t, router, "contacts")

	csvData := "First Name,Last Name,Cell Phone\nJane,Doe,4253017766\n"
	rec := doUpload(t, router, "/api/sessions/"+id+"/upload", map[string]string{"contacts.csv": csvData})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/sessions/%s/placeholder-emails", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/sessions/"+id+"/export", nil)
	assert.Contains(t, rec.Body.String(), "jane.doe.017766@import.moovs.com")
}
