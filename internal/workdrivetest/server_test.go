package workdrivetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataAndErrorEnvelope(t *testing.T) {
	srv := New()
	fileID := srv.AddFile("root", "a.txt", []byte("abc"), "text/plain", 1700000000000)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/files/" + fileID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc struct {
		Data struct {
			ID         string         `json:"id"`
			Attributes map[string]any `json:"attributes"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, fileID, doc.Data.ID)
	assert.Equal(t, "a.txt", doc.Data.Attributes["name"])

	resp, err = http.Get(ts.URL + "/api/v1/files/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var env struct {
		Errors []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "F7003", env.Errors[0].ID)
}

func TestBearerTokenEnforcement(t *testing.T) {
	srv := New()
	srv.SetToken("secret")
	fileID := srv.AddFile("root", "a.txt", []byte("abc"), "", 0)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/files/"+fileID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJournalRecordsBodies(t *testing.T) {
	srv := New()
	rootID := srv.AddFolder("", "root")

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body := `{"attributes":{"name":"sub","parent_id":"` + rootID + `"}}`
	resp, err := http.Post(ts.URL+"/api/v1/files", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.JSONEq(t, body, string(reqs[0].Body))

	srv.ResetJournal()
	assert.Empty(t, srv.Requests())
}

func TestPublishFlagFollowsPermissions(t *testing.T) {
	srv := New()
	fileID := srv.AddFile("root", "a.txt", []byte("abc"), "", 0)
	permID := srv.AddPermission(fileID, "publish", 34)

	res, ok := srv.Resource(fileID)
	require.True(t, ok)
	assert.True(t, res.Published)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/permissions/"+permID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	res, ok = srv.Resource(fileID)
	require.True(t, ok)
	assert.False(t, res.Published)
}
