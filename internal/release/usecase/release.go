package usecase

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jasonalt/ghrelease/internal/release/entity"
)

type ReleaseUsecase struct {
	API     ReleaseAPI
	Signer  Signer
	Updater UpdateApplier
}

func NewReleaseUsecase(api ReleaseAPI, signer Signer, updater UpdateApplier) *ReleaseUsecase {
	return &ReleaseUsecase{
		API:     api,
		Signer:  signer,
		Updater: updater,
	}
}

// Release resolves a tag to its release. The tag "latest" resolves to the
// most recent published release.
func (u *ReleaseUsecase) Release(ctx context.Context, tag string) (entity.Release, error) {
	log.Printf("[Release] fetching release %s", tag)

	var (
		release entity.Release
		err     error
	)
	if tag == "latest" {
		release, err = u.API.GetLatestRelease(ctx)
	} else {
		release, err = u.API.GetReleaseByTag(ctx, tag)
	}
	if err != nil {
		return release, NewUsecaseError("Failed to get GitHub release information", err)
	}

	log.Printf("[Release] release %s has id %d and %d assets", tag, release.ID, len(release.Assets))
	return release, nil
}

// ListAssets returns the asset names of a release in server order.
func (u *ReleaseUsecase) ListAssets(ctx context.Context, tag string) ([]string, error) {
	release, err := u.Release(ctx, tag)
	if err != nil {
		return nil, err
	}
	return release.AssetNames(), nil
}

// Download fetches the named asset of a release into outDir/name,
// replacing any existing file. It returns the written path.
func (u *ReleaseUsecase) Download(ctx context.Context, tag, name, outDir string) (string, error) {
	release, err := u.Release(ctx, tag)
	if err != nil {
		return "", err
	}

	if outDir == "" {
		outDir = "."
	}
	outPath := filepath.Join(outDir, name)

	err = writeFileAtomically(outPath, func(f *os.File) error {
		return u.DownloadTo(ctx, release, name, f)
	})
	if err != nil {
		return "", err
	}

	log.Printf("[Download] wrote %s", outPath)
	return outPath, nil
}

// DownloadTo streams the named asset of release into w.
func (u *ReleaseUsecase) DownloadTo(ctx context.Context, release entity.Release, name string, w io.Writer) error {
	url, ok := AssetURLs(release.Assets)[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, name)
	}

	log.Printf("[DownloadTo] downloading %s", url)
	body, err := u.API.Download(ctx, url)
	if err != nil {
		return NewUsecaseError("Failed to download "+name, err)
	}
	defer body.Close()

	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Upload attaches the file at path to release under its base name. An asset
// with the same name already on the release is left untouched and reported
// as skipped.
func (u *ReleaseUsecase) Upload(ctx context.Context, release entity.Release, path string) (entity.UploadResult, error) {
	name := filepath.Base(path)
	result := entity.UploadResult{Path: path, Name: name}

	if HasAsset(release.Assets, name) {
		log.Printf("[Upload] %s already attached to release %d", name, release.ID)
		result.Outcome = entity.OutcomeSkipped
		return result, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Err = err
		return result, err
	}

	contentType := ContentType(name)
	log.Printf("[Upload] uploading %s (%d bytes, %s) to release %d", name, len(data), contentType, release.ID)

	err = u.API.UploadAsset(ctx, release, name, contentType, data)
	if err != nil {
		result.Err = NewUsecaseError("Failed to upload "+name, err)
		return result, result.Err
	}

	result.Outcome = entity.OutcomeUploaded
	return result, nil
}

// UploadByTag resolves tag and uploads a single file to it.
func (u *ReleaseUsecase) UploadByTag(ctx context.Context, tag, path string) (entity.UploadResult, error) {
	release, err := u.Release(ctx, tag)
	if err != nil {
		return entity.UploadResult{Path: path, Name: filepath.Base(path), Err: err}, err
	}
	return u.Upload(ctx, release, path)
}

// Sign writes a detached signature for path and returns the signature path.
func (u *ReleaseUsecase) Sign(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	sigPath, err := u.Signer.DetachSign(ctx, path)
	if err != nil {
		return "", NewUsecaseError("Failed to sign "+path, err)
	}
	return sigPath, nil
}

// SelfUpdate replaces the running binary with the named asset of the release.
func (u *ReleaseUsecase) SelfUpdate(ctx context.Context, tag, name string) error {
	release, err := u.Release(ctx, tag)
	if err != nil {
		return err
	}

	url, ok := AssetURLs(release.Assets)[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAssetNotFound, name)
	}

	log.Println("[SelfUpdate] self-updating from " + url)
	body, err := u.API.Download(ctx, url)
	if err != nil {
		return NewUsecaseError("Failed to download "+name, err)
	}
	defer body.Close()

	return u.Updater.Apply(body)
}

// writeFileAtomically writes outPath through a temporary sibling that is
// renamed into place once write succeeds.
func writeFileAtomically(outPath string, write func(f *os.File) error) error {
	dir := filepath.Dir(outPath)
	tmpPath := filepath.Join(dir, "."+filepath.Base(outPath)+"."+uuid.New().String()+".part")

	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
