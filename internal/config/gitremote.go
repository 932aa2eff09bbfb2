package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	git "gopkg.in/src-d/go-git.v4"
)

var (
	errNoOrigin    = errors.New("no origin remote")
	errForeignHost = errors.New("remote is not hosted on the configured GitHub")
)

// DetectRepository returns owner/name of the origin remote of the git
// repository containing dir. The remote must live on the GitHub host served
// by apiURL.
func DetectRepository(dir, apiURL string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", err
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return "", err
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", errNoOrigin
	}
	return ParseRepository(urls[0], GitHubHost(apiURL))
}

// GitHubHost returns the git host behind an API base URL: github.com for
// https://api.github.com, ghe.example.com for https://ghe.example.com/api/v3.
func GitHubHost(apiURL string) string {
	u, err := url.Parse(apiURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "api.")
}

// ParseRepository extracts owner/name from a git remote URL such as
// https://github.com/owner/name.git or git@github.com:owner/name.git.
// Remotes on any host other than host are rejected.
func ParseRepository(remoteURL, host string) (string, error) {
	remoteURL = strings.TrimSpace(remoteURL)

	var remoteHost, path string
	if strings.Contains(remoteURL, "://") {
		u, err := url.Parse(remoteURL)
		if err != nil {
			return "", err
		}
		remoteHost, path = u.Hostname(), u.Path
	} else if i := strings.Index(remoteURL, ":"); i >= 0 {
		// scp-like syntax
		remoteHost, path = remoteURL[:i], remoteURL[i+1:]
		if at := strings.LastIndex(remoteHost, "@"); at >= 0 {
			remoteHost = remoteHost[at+1:]
		}
	} else {
		return "", fmt.Errorf("unrecognized remote URL: %s", remoteURL)
	}

	if !strings.EqualFold(remoteHost, host) {
		return "", fmt.Errorf("%w: %s", errForeignHost, remoteURL)
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", fmt.Errorf("remote URL has no owner/name: %s", remoteURL)
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1], nil
}
