package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/jasonalt/ghrelease/internal/release/entity"
	"github.com/jasonalt/ghrelease/internal/release/usecase"
)

func downloadCommand() cli.Command {
	return cli.Command{
		Name:      "download",
		Usage:     "Download a release asset into the current directory",
		ArgsUsage: "<tag> <asset>",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "output, o",
				Value: ".",
				Usage: "directory to write the asset to",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return usageError(c, "")
			}

			_, err := releases.Download(context.Background(), c.Args().Get(0), c.Args().Get(1), c.String("output"))
			return err
		},
	}
}

func uploadCommand() cli.Command {
	return cli.Command{
		Name:      "upload",
		Usage:     "Upload a file to a release unless an asset of that name exists",
		ArgsUsage: "<tag> <asset>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 || cfg.RequireToken() != nil {
				return usageError(c, "GITHUB_TOKEN=<token> ")
			}

			result, err := releases.UploadByTag(context.Background(), c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return err
			}
			fmt.Println(result.Outcome)
			return nil
		},
	}
}

func publishCommand() cli.Command {
	return cli.Command{
		Name:      "publish",
		Usage:     "Upload several packages to the release named by RELEASE",
		ArgsUsage: "<package1> [package2...]",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "release, r",
				Usage: "release tag, overrides RELEASE",
			},
		},
		Action: func(c *cli.Context) error {
			if c.IsSet("release") {
				cfg.Release = c.String("release")
			}
			if c.NArg() < 1 || cfg.RequireToken() != nil || cfg.RequireRelease() != nil {
				return usageError(c, "RELEASE=<tag> GITHUB_TOKEN=<token> ")
			}

			opts := usecase.BatchOptions{
				Policy: usecase.Policy(cfg.Batch.Policy),
				Jobs:   cfg.Batch.Jobs,
			}
			_, err := releases.UploadBatch(context.Background(), cfg.Release, c.Args(), opts, printResult)
			return err
		},
	}
}

func printResult(result entity.UploadResult) {
	if result.Err != nil {
		fmt.Fprintf(os.Stdout, "%s ... failed\n", result.Path)
		return
	}
	fmt.Fprintf(os.Stdout, "%s ... %s\n", result.Path, result.Outcome)
}
