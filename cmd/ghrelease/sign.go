package main

import (
	"context"
	"log"

	"github.com/urfave/cli"
)

func signCommand() cli.Command {
	return cli.Command{
		Name:      "sign",
		Usage:     "Write a detached ASCII-armored signature to <asset>.asc",
		ArgsUsage: "<asset>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return usageError(c, "")
			}

			sigPath, err := releases.Sign(context.Background(), c.Args().Get(0))
			if err != nil {
				return err
			}
			log.Println("[sign] wrote " + sigPath)
			return nil
		},
	}
}
