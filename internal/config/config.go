package config

import (
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ghodss/yaml"
	validator "gopkg.in/go-playground/validator.v9"
)

const (
	DefaultRepository = "JasonAlt/GridFTP-DSI-for-HPSS"
	DefaultAPIURL     = "https://api.github.com"
	DefaultUploadURL  = "https://uploads.github.com"
	DefaultTimeout    = 0
)

var (
	ErrTokenMissing = errors.New("GITHUB_TOKEN is not set")
	ErrTagMissing   = errors.New("RELEASE is not set")
)

type Config struct {
	Repository string           `json:"repository" validate:"required"` // owner/name
	APIURL     string           `json:"api_url" validate:"required,url"`
	UploadURL  string           `json:"upload_url" validate:"required,url"`
	Timeout    int              `json:"timeout" validate:"min=0"` // seconds, 0 disables
	Signing    SigningConfig    `json:"signing"`
	Batch      BatchConfig      `json:"batch"`
	SelfUpdate SelfUpdateConfig `json:"self_update"`

	// Token and Release only come from the environment or flags.
	Token   string `json:"-"`
	Release string `json:"-"`
}

type SigningConfig struct {
	Homedir   string `json:"homedir"`                        // GNUPGHOME
	KeyID     string `json:"key_id"`                         // C36C826C18ED73C338DCFA531EA106A24003C353
	GPGBinary string `json:"gpg_binary" validate:"required"` // gpg
}

type BatchConfig struct {
	Policy string `json:"policy" validate:"oneof=fail-fast collect-all"`
	Jobs   int    `json:"jobs" validate:"min=1"`
}

type SelfUpdateConfig struct {
	Tag   string `json:"tag" validate:"required"`
	Asset string `json:"asset"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Repository: DefaultRepository,
		APIURL:     DefaultAPIURL,
		UploadURL:  DefaultUploadURL,
		Timeout:    DefaultTimeout,
		Signing:    SigningConfig{GPGBinary: "gpg"},
		Batch:      BatchConfig{Policy: "fail-fast", Jobs: 1},
		SelfUpdate: SelfUpdateConfig{Tag: "latest"},
	}
}

// LoadConfig builds the configuration from defaults, the git origin of the
// working directory, an optional YAML file and the environment. An empty
// configPath falls back to GHRELEASE_CONFIG, then to the per-user file when
// it exists.
func LoadConfig(configPath string) (config Config, err error) {
	config = Default()

	repositorySet := false
	explicit := configPath != ""
	if !explicit {
		configPath = os.Getenv("GHRELEASE_CONFIG")
		explicit = configPath != ""
	}
	if !explicit {
		configPath = userConfigPath()
	}

	if configPath != "" {
		yamlFile, readErr := ioutil.ReadFile(configPath)
		switch {
		case readErr == nil:
			log.Println("load config from : ", configPath)
			if err = yaml.Unmarshal(yamlFile, &config); err != nil {
				return config, fmt.Errorf("parse %s: %w", configPath, err)
			}
			var fromFile struct {
				Repository string `json:"repository"`
			}
			if err = yaml.Unmarshal(yamlFile, &fromFile); err != nil {
				return config, fmt.Errorf("parse %s: %w", configPath, err)
			}
			repositorySet = fromFile.Repository != ""
		case explicit || !os.IsNotExist(readErr):
			return config, readErr
		}
	}

	// The origin remote only replaces the built-in repository, and only when
	// it lives on the GitHub host of api_url.
	if !repositorySet {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			if repo, detectErr := DetectRepository(cwd, config.APIURL); detectErr == nil {
				config.Repository = repo
			} else {
				log.Println("[LoadConfig] origin remote not used:", detectErr)
			}
		}
	}

	if err = applyEnv(&config); err != nil {
		return
	}

	err = config.Validate()
	return
}

func applyEnv(config *Config) error {
	if v := os.Getenv("GHRELEASE_REPOSITORY"); v != "" {
		config.Repository = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		config.Token = v
	}
	if v := os.Getenv("RELEASE"); v != "" {
		config.Release = v
	}
	if v := os.Getenv("GNUPGHOME"); v != "" {
		config.Signing.Homedir = v
	}
	if v := os.Getenv("GHRELEASE_SIGNING_KEY"); v != "" {
		config.Signing.KeyID = v
	}
	if v := os.Getenv("GHRELEASE_JOBS"); v != "" {
		jobs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GHRELEASE_JOBS: %w", err)
		}
		config.Batch.Jobs = jobs
	}
	return nil
}

func userConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ghrelease", "config.yml")
}

// Validate checks the struct tags.
func (c Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// RequireToken fails when no token is configured.
func (c Config) RequireToken() error {
	if c.Token == "" {
		return ErrTokenMissing
	}
	return nil
}

// RequireRelease fails when no release tag is configured.
func (c Config) RequireRelease() error {
	if c.Release == "" {
		return ErrTagMissing
	}
	return nil
}

// HTTPTimeout converts Timeout to a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// String renders the configuration without the token.
func (c Config) String() string {
	token := ""
	if c.Token != "" {
		token = "<redacted>"
	}
	return fmt.Sprintf("repository=%s api=%s upload=%s timeout=%ds token=%s release=%s gnupghome=%s key=%s policy=%s jobs=%d",
		c.Repository, c.APIURL, c.UploadURL, c.Timeout, token, c.Release,
		c.Signing.Homedir, c.Signing.KeyID, c.Batch.Policy, c.Batch.Jobs)
}
