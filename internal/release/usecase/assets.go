package usecase

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/jasonalt/ghrelease/internal/release/entity"
)

const defaultContentType = "application/octet-stream"

// Types for release artifacts that the platform MIME tables tend to miss.
var artifactContentTypes = map[string]string{
	".rpm": "application/x-rpm",
	".deb": "application/vnd.debian.binary-package",
	".asc": "application/pgp-signature",
	".sig": "application/pgp-signature",
	".tgz": "application/gzip",
	".gz":  "application/gzip",
	".bz2": "application/x-bzip2",
	".xz":  "application/x-xz",
}

// HasAsset reports whether an asset named exactly name is attached.
func HasAsset(assets []entity.ReleaseAsset, name string) bool {
	for _, a := range assets {
		if a.Name == name {
			return true
		}
	}
	return false
}

// AssetURLs maps asset names to their download URLs. The first asset wins
// when a name repeats.
func AssetURLs(assets []entity.ReleaseAsset) map[string]string {
	urls := make(map[string]string, len(assets))
	for _, a := range assets {
		if _, ok := urls[a.Name]; !ok {
			urls[a.Name] = a.BrowserDownloadURL
		}
	}
	return urls
}

// ContentType guesses the MIME type of an asset from its file extension.
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return defaultContentType
	}
	if t, ok := artifactContentTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return defaultContentType
}
