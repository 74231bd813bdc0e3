package main

import (
	"fmt"
	"helpmatch/internal/utils"

	"github.com/urfave/cli/v2"
)

var nanoidCommand = &cli.Command{
	Name:  "nanoid",
	Usage: "Print fresh category ids for the seed catalog",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "How many ids to print",
			Value:   1,
		},
		&cli.IntFlag{
			Name:    "size",
			Aliases: []string{"s"},
			Usage:   "Id length",
			Value:   utils.NanoidSize,
		},
	},
	Action: func(c *cli.Context) error {
		count := c.Int("count")
		if count < 1 {
			return fmt.Errorf("count must be at least 1")
		}

		ids := utils.NanoIDs(count, c.Int("size"))
		for _, id := range ids {
			fmt.Fprintln(c.App.Writer, id)
		}
		return nil
	},
}
