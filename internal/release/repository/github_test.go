package repository

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonalt/ghrelease/internal/release/entity"
	"github.com/jasonalt/ghrelease/pkg/httputil"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, _ := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

const releaseJSON = `{
  "url": "https://api.github.com/repos/JasonAlt/GridFTP-DSI-for-HPSS/releases/23738209",
  "upload_url": "https://uploads.github.com/repos/JasonAlt/GridFTP-DSI-for-HPSS/releases/23738209/assets{?name,label}",
  "id": 23738209,
  "node_id": "MDc6UmVsZWFzZTIzNzM4MjA5",
  "tag_name": "Version_2_10_1",
  "name": "Version 2.10.1",
  "draft": false,
  "assets": [
    {
      "id": 18505484,
      "name": "globus-gridftp-server-hpss-7.4-2.10-1.el7.x86_64.rpm",
      "content_type": "application/x-rpm",
      "state": "uploaded",
      "size": 49324,
      "browser_download_url": "https://github.com/JasonAlt/GridFTP-DSI-for-HPSS/releases/download/Version_2_10_1/globus-gridftp-server-hpss-7.4-2.10-1.el7.x86_64.rpm"
    },
    {
      "id": 18505486,
      "name": "globus-gridftp-server-hpss-7.4-debuginfo-2.10-1.el7.x86_64.rpm",
      "content_type": "application/x-rpm",
      "size": 92168,
      "browser_download_url": "https://github.com/JasonAlt/GridFTP-DSI-for-HPSS/releases/download/Version_2_10_1/globus-gridftp-server-hpss-7.4-debuginfo-2.10-1.el7.x86_64.rpm"
    }
  ]
}`

func newTestAPI(t *testing.T, server *httptest.Server, token string) *GitHubAPI {
	t.Helper()
	api, err := NewGitHubAPI(server.URL+"/", server.URL, "JasonAlt/GridFTP-DSI-for-HPSS", token, 5*time.Second)
	require.NoError(t, err)
	return api
}

func TestNewGitHubAPIRejectsBadRepository(t *testing.T) {
	for _, repo := range []string{"", "owner", "/name", "owner/"} {
		_, err := NewGitHubAPI("https://api.github.com", "https://uploads.github.com", repo, "", 0)
		assert.Error(t, err, repo)
	}
}

func TestGetReleaseByTag(t *testing.T) {
	var gotPath, gotAuth, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(releaseJSON))
	}))
	defer server.Close()

	release, err := newTestAPI(t, server, "").GetReleaseByTag(context.Background(), "Version_2_10_1")
	require.NoError(t, err)

	assert.Equal(t, "/repos/JasonAlt/GridFTP-DSI-for-HPSS/releases/tags/Version_2_10_1", gotPath)
	assert.Empty(t, gotAuth)
	assert.Contains(t, gotAccept, "application/vnd.github")

	assert.Equal(t, int64(23738209), release.ID)
	assert.Equal(t, "Version_2_10_1", release.TagName)
	assert.Equal(t, []string{
		"globus-gridftp-server-hpss-7.4-2.10-1.el7.x86_64.rpm",
		"globus-gridftp-server-hpss-7.4-debuginfo-2.10-1.el7.x86_64.rpm",
	}, release.AssetNames())
	assert.Equal(t, int64(49324), release.Assets[0].Size)
}

func TestGetLatestReleaseSendsToken(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, entity.Release{ID: 1, TagName: "v1"})
	}))
	defer server.Close()

	release, err := newTestAPI(t, server, "abc").GetLatestRelease(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/repos/JasonAlt/GridFTP-DSI-for-HPSS/releases/latest", gotPath)
	assert.Equal(t, "token abc", gotAuth)
	assert.Equal(t, "v1", release.TagName)
}

func TestGetReleaseByTagNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not Found")
	}))
	defer server.Close()

	_, err := newTestAPI(t, server, "").GetReleaseByTag(context.Background(), "missing")
	require.Error(t, err)

	statusErr, ok := err.(httputil.HTTPStatusError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, `{"message":"Not Found"}`, statusErr.Error())
}

func TestGetReleaseByTagBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	_, err := newTestAPI(t, server, "").GetReleaseByTag(context.Background(), "v1")
	assert.Error(t, err)
}

func TestUploadAsset(t *testing.T) {
	var (
		gotMethod, gotPath, gotName, gotAuth, gotType string
		gotBody                                       []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotName = r.URL.Query().Get("name")
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = ioutil.ReadAll(r.Body)
		writeJSON(w, http.StatusCreated, entity.ReleaseAsset{ID: 9, Name: gotName})
	}))
	defer server.Close()

	release := entity.Release{ID: 23738209}
	err := newTestAPI(t, server, "s3cret").UploadAsset(context.Background(), release, "pkg 1+2.rpm", "application/x-rpm", []byte("rpm bytes"))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/repos/JasonAlt/GridFTP-DSI-for-HPSS/releases/23738209/assets", gotPath)
	assert.Equal(t, "pkg 1+2.rpm", gotName)
	assert.Equal(t, "token s3cret", gotAuth)
	assert.Equal(t, "application/x-rpm", gotType)
	assert.Equal(t, []byte("rpm bytes"), gotBody)
}

func TestUploadAssetRequiresCreated(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "unprocessable", status: http.StatusUnprocessableEntity, body: `{"message":"Validation Failed","errors":[{"code":"already_exists"}]}`},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"Bad credentials"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := newTestAPI(t, server, "t").UploadAsset(context.Background(), entity.Release{ID: 1}, "a.rpm", "application/x-rpm", nil)
			require.Error(t, err)
			assert.Equal(t, tt.body, err.Error())
		})
	}
}

func TestUploadAssetRejectsOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, entity.ReleaseAsset{})
	}))
	defer server.Close()

	err := newTestAPI(t, server, "t").UploadAsset(context.Background(), entity.Release{ID: 1}, "a.rpm", "application/x-rpm", nil)
	require.Error(t, err)
	statusErr, ok := err.(httputil.HTTPStatusError)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, statusErr.StatusCode)
}

func TestUploadAssetUsesReleaseUploadURL(t *testing.T) {
	var gotPath, gotName string
	uploads := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotName = r.URL.Query().Get("name")
		writeJSON(w, http.StatusCreated, entity.ReleaseAsset{Name: gotName})
	}))
	defer uploads.Close()

	// The configured upload host is never contacted.
	api, err := NewGitHubAPI("http://127.0.0.1:1/", "http://127.0.0.1:1/", "JasonAlt/GridFTP-DSI-for-HPSS", "t", 5*time.Second)
	require.NoError(t, err)

	release := entity.Release{
		ID:        23738209,
		UploadURL: uploads.URL + "/enterprise/repos/JasonAlt/GridFTP-DSI-for-HPSS/releases/23738209/assets{?name,label}",
	}
	err = api.UploadAsset(context.Background(), release, "pkg.rpm", "application/x-rpm", []byte("rpm"))
	require.NoError(t, err)
	assert.Equal(t, "/enterprise/repos/JasonAlt/GridFTP-DSI-for-HPSS/releases/23738209/assets", gotPath)
	assert.Equal(t, "pkg.rpm", gotName)
}

func TestDownloadFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/releases/download/v1/pkg.rpm", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/storage/blob", http.StatusFound)
	})
	mux.HandleFunc("/storage/blob", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	body, err := newTestAPI(t, server, "").Download(context.Background(), server.URL+"/releases/download/v1/pkg.rpm")
	require.NoError(t, err)
	defer body.Close()

	data, err := ioutil.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestDownloadNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := newTestAPI(t, server, "").Download(context.Background(), server.URL+"/missing")
	require.Error(t, err)
	statusErr, ok := err.(httputil.HTTPStatusError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}
