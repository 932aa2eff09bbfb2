package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/urfave/cli"

	"github.com/jasonalt/ghrelease/internal/config"
	"github.com/jasonalt/ghrelease/internal/release/repository"
	"github.com/jasonalt/ghrelease/internal/release/usecase"
)

const appName = "ghrelease"

var (
	app     *cli.App
	version string

	cfg      config.Config
	releases *usecase.ReleaseUsecase
)

func main() {
	app = newApp()

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	a := cli.NewApp()
	a.Name = appName
	a.Usage = "publish release artifacts to GitHub releases"
	a.Version = version

	a.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "path to a YAML config file",
		},
		cli.StringFlag{
			Name:  "repo",
			Usage: "repository as owner/name",
		},
		cli.StringFlag{
			Name:  "api-url",
			Usage: "GitHub API base URL",
		},
		cli.StringFlag{
			Name:  "upload-url",
			Usage: "GitHub upload base URL",
		},
		cli.StringFlag{
			Name:  "gnupg-home",
			Usage: "GnuPG key store used for signing",
		},
		cli.StringFlag{
			Name:  "key",
			Usage: "signing key ID",
		},
		cli.StringFlag{
			Name:  "policy",
			Usage: "batch error policy: fail-fast or collect-all",
		},
		cli.IntFlag{
			Name:  "jobs, j",
			Usage: "concurrent uploads in publish",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "log progress to stderr",
		},
	}

	a.Before = setup
	a.Commands = []cli.Command{
		listCommand(),
		downloadCommand(),
		uploadCommand(),
		signCommand(),
		publishCommand(),
		selfUpdateCommand(),
	}
	return a
}

// setup builds the configuration and the release usecase once per run.
func setup(c *cli.Context) (err error) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if !c.Bool("verbose") {
		log.SetOutput(ioutil.Discard)
	}

	cfg, err = config.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, &cfg)
	if err = cfg.Validate(); err != nil {
		return err
	}
	log.Println("[setup] " + cfg.String())

	api, err := repository.NewGitHubAPI(cfg.APIURL, cfg.UploadURL, cfg.Repository, cfg.Token, cfg.HTTPTimeout())
	if err != nil {
		return err
	}
	signer := repository.NewGPG(cfg.Signing.GPGBinary, cfg.Signing.Homedir, cfg.Signing.KeyID)
	releases = usecase.NewReleaseUsecase(api, signer, repository.BinaryUpdater{})
	return nil
}

func applyFlags(c *cli.Context, conf *config.Config) {
	if c.IsSet("repo") {
		conf.Repository = c.String("repo")
	}
	if c.IsSet("api-url") {
		conf.APIURL = c.String("api-url")
	}
	if c.IsSet("upload-url") {
		conf.UploadURL = c.String("upload-url")
	}
	if c.IsSet("gnupg-home") {
		conf.Signing.Homedir = c.String("gnupg-home")
	}
	if c.IsSet("key") {
		conf.Signing.KeyID = c.String("key")
	}
	if c.IsSet("policy") {
		conf.Batch.Policy = c.String("policy")
	}
	if c.IsSet("jobs") {
		conf.Batch.Jobs = c.Int("jobs")
	}
}

// usageError prints the command synopsis and exits with status 1.
func usageError(c *cli.Context, envPrefix string) error {
	return cli.NewExitError(fmt.Sprintf("Usage: %s%s %s %s", envPrefix, c.App.Name, c.Command.Name, c.Command.ArgsUsage), 1)
}
