package repository

import (
	"context"
	"log"
)

const signatureSuffix = ".asc"

// GPG signs files with the gpg binary against a configurable key store.
type GPG struct {
	Binary   string
	GnupgDir string
	KeyID    string
	Runner   CommandRunner
}

func NewGPG(binary, gnupgDir, keyID string) *GPG {
	if binary == "" {
		binary = "gpg"
	}
	return &GPG{Binary: binary, GnupgDir: gnupgDir, KeyID: keyID, Runner: ShellRunner{}}
}

func (g *GPG) env() []string {
	if g.GnupgDir == "" {
		return nil
	}
	return []string{"GNUPGHOME=" + g.GnupgDir}
}

// DetachSign writes an ASCII-armored detached signature of path to path.asc.
func (g *GPG) DetachSign(ctx context.Context, path string) (string, error) {
	sigPath := path + signatureSuffix

	args := []string{"--batch", "--yes", "--armor"}
	if g.KeyID != "" {
		args = append(args, "--local-user", g.KeyID)
	}
	args = append(args, "--output", sigPath, "--detach-sign", path)

	log.Printf("[DetachSign] signing %s with key %q", path, g.KeyID)
	if _, err := g.Runner.Run(ctx, g.env(), g.Binary, args...); err != nil {
		return "", err
	}
	return sigPath, nil
}
