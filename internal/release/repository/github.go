package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v52/github"

	"github.com/jasonalt/ghrelease/internal/release/entity"
	"github.com/jasonalt/ghrelease/pkg/httputil"
)

// GitHubAPI talks to the releases endpoints of one repository.
type GitHubAPI struct {
	Client *github.Client
	Owner  string
	Name   string
}

// tokenTransport adds the "Authorization: token" header GitHub accepts for
// personal access tokens.
type tokenTransport struct {
	Token string
	Base  http.RoundTripper
}

func (t tokenTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Token == "" {
		return base.RoundTrip(request)
	}
	request = request.Clone(request.Context())
	request.Header.Set("Authorization", "token "+t.Token)
	return base.RoundTrip(request)
}

// NewGitHubAPI returns a client for repository (owner/name). A zero timeout
// leaves requests unbounded.
func NewGitHubAPI(apiURL, uploadURL, repository, token string, timeout time.Duration) (*GitHubAPI, error) {
	owner, name, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("repository must be owner/name: %q", repository)
	}

	client := github.NewClient(&http.Client{
		Timeout:   timeout,
		Transport: tokenTransport{Token: token},
	})

	var err error
	if client.BaseURL, err = url.Parse(withSlash(apiURL)); err != nil {
		return nil, fmt.Errorf("api url: %w", err)
	}
	if client.UploadURL, err = url.Parse(withSlash(uploadURL)); err != nil {
		return nil, fmt.Errorf("upload url: %w", err)
	}

	return &GitHubAPI{Client: client, Owner: owner, Name: name}, nil
}

func withSlash(u string) string {
	return strings.TrimRight(u, "/") + "/"
}

func (api *GitHubAPI) GetReleaseByTag(ctx context.Context, tag string) (entity.Release, error) {
	release, response, err := api.Client.Repositories.GetReleaseByTag(ctx, api.Owner, api.Name, url.PathEscape(tag))
	if err != nil {
		return entity.Release{}, statusError(response, err)
	}
	return toRelease(release), nil
}

func (api *GitHubAPI) GetLatestRelease(ctx context.Context) (entity.Release, error) {
	release, response, err := api.Client.Repositories.GetLatestRelease(ctx, api.Owner, api.Name)
	if err != nil {
		return entity.Release{}, statusError(response, err)
	}
	return toRelease(release), nil
}

// UploadAsset posts data as a new asset of release. The endpoint comes from
// the release's upload_url when the release carries one.
func (api *GitHubAPI) UploadAsset(ctx context.Context, release entity.Release, name, contentType string, data []byte) error {
	query := url.Values{}
	query.Set("name", name)
	endpoint := api.uploadEndpoint(release) + "?" + query.Encode()

	request, err := api.Client.NewUploadRequest(endpoint, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return err
	}

	asset := new(github.ReleaseAsset)
	response, err := api.Client.Do(ctx, request, asset)
	if err != nil {
		return statusError(response, err)
	}
	if response.StatusCode != http.StatusCreated {
		return httputil.HTTPStatusError{StatusCode: response.StatusCode}
	}
	return nil
}

// uploadEndpoint expands the upload_url template
// (".../releases/1/assets{?name,label}") without its query part.
func (api *GitHubAPI) uploadEndpoint(release entity.Release) string {
	if release.UploadURL != "" {
		endpoint, _, _ := strings.Cut(release.UploadURL, "{")
		return endpoint
	}
	return fmt.Sprintf("repos/%s/%s/releases/%d/assets", api.Owner, api.Name, release.ID)
}

// Download opens the asset at downloadURL, following redirects. The caller
// closes the returned body.
func (api *GitHubAPI) Download(ctx context.Context, downloadURL string) (io.ReadCloser, error) {
	request, err := api.Client.NewRequest(http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/octet-stream")

	response, err := api.Client.BareDo(ctx, request)
	if err != nil {
		return nil, statusError(response, err)
	}
	if response.StatusCode != http.StatusOK {
		response.Body.Close()
		return nil, httputil.HTTPStatusError{StatusCode: response.StatusCode}
	}
	return response.Body, nil
}

// statusError turns a non-2xx reply into an HTTPStatusError with the body
// GitHub sent. go-github leaves that body readable on the response.
func statusError(response *github.Response, err error) error {
	if response == nil || response.Response == nil || response.StatusCode < 300 {
		return err
	}
	return httputil.StatusError(response.Response)
}

func toRelease(release *github.RepositoryRelease) entity.Release {
	result := entity.Release{
		ID:        release.GetID(),
		TagName:   release.GetTagName(),
		Name:      release.GetName(),
		URL:       release.GetURL(),
		UploadURL: release.GetUploadURL(),
	}
	for _, asset := range release.Assets {
		result.Assets = append(result.Assets, entity.ReleaseAsset{
			ID:                 asset.GetID(),
			Name:               asset.GetName(),
			ContentType:        asset.GetContentType(),
			Size:               int64(asset.GetSize()),
			BrowserDownloadURL: asset.GetBrowserDownloadURL(),
		})
	}
	return result
}
