package entity

// ReleaseAsset is a named file attached to a release.
type ReleaseAsset struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	ContentType        string `json:"content_type"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Release is the subset of the GitHub release payload the tools read.
type Release struct {
	ID        int64          `json:"id"`
	TagName   string         `json:"tag_name"`
	Name      string         `json:"name"`
	URL       string         `json:"url"`
	UploadURL string         `json:"upload_url"`
	Assets    []ReleaseAsset `json:"assets"`
}

// AssetNames returns the asset names in the order the server listed them.
func (r Release) AssetNames() []string {
	names := make([]string, 0, len(r.Assets))
	for _, a := range r.Assets {
		names = append(names, a.Name)
	}
	return names
}
