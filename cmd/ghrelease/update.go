package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/urfave/cli"
)

func selfUpdateCommand() cli.Command {
	return cli.Command{
		Name:  "self-update",
		Usage: "Replace this binary with an asset from a release",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "tag, t",
				Usage: "release tag, or latest",
			},
			cli.StringFlag{
				Name:  "asset, a",
				Usage: "asset name, defaults to ghrelease-<os>-<arch>",
			},
			cli.BoolFlag{
				Name:  "yes, y",
				Usage: "do not ask for confirmation",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 0 {
				return usageError(c, "")
			}

			tag := cfg.SelfUpdate.Tag
			if c.IsSet("tag") {
				tag = c.String("tag")
			}
			asset := selfUpdateAsset(c.String("asset"), cfg.SelfUpdate.Asset)

			if !c.Bool("yes") && isTerminal(os.Stdin) {
				prompt := promptui.Prompt{
					Label:     fmt.Sprintf("Replace this binary with %s from release %s", asset, tag),
					IsConfirm: true,
				}
				result, err := prompt.Run()
				if err != nil || strings.ToLower(result) != "y" {
					return errors.New("update cancelled")
				}
			}

			if err := releases.SelfUpdate(context.Background(), tag, asset); err != nil {
				return err
			}
			fmt.Println("Updated to " + asset + " from " + tag)
			return nil
		},
	}
}

// selfUpdateAsset picks the asset name: flag, then config, then the
// platform default.
func selfUpdateAsset(flag, configured string) string {
	if flag != "" {
		return flag
	}
	if configured != "" {
		return configured
	}
	name := fmt.Sprintf("%s-%s-%s", appName, runtime.GOOS, runtime.GOARCH)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name
}
