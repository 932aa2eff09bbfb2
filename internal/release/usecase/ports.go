package usecase

import (
	"context"
	"io"

	"github.com/jasonalt/ghrelease/internal/release/entity"
)

type ReleaseAPI interface {
	GetReleaseByTag(ctx context.Context, tag string) (entity.Release, error)
	GetLatestRelease(ctx context.Context) (entity.Release, error)
	UploadAsset(ctx context.Context, release entity.Release, name, contentType string, data []byte) error
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

type Signer interface {
	DetachSign(ctx context.Context, path string) (string, error)
}

type UpdateApplier interface {
	Apply(reader io.Reader) error
}

// Reporter receives upload results in input order.
type Reporter func(result entity.UploadResult)
