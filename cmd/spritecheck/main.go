package main

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/pvmm/spritetools"
	"github.com/pvmm/spritetools/palette"
	"github.com/pvmm/spritetools/sc5"
	"github.com/pvmm/spritetools/sprite"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "spritecheck"
	app.Usage = "Sprite checker for MSX2 OR-color sprites"
	app.Version = "1.0.0"
	app.ArgsUsage = "IMAGE"

	app.Flags = []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Value:   sprite.DefaultMaxPlanes,
			Usage:   "maximum sprites per slot",
		},
		&cli.StringFlag{
			Name:    "palette",
			Aliases: []string{"p"},
			Usage:   "set of colors to use from file",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Action = func(c *cli.Context) error {
		if c.NArg() < 1 {
			cli.ShowAppHelpAndExit(c, 2)
		}

		logger := log.New(io.Discard, "", 0)
		if c.Bool("verbose") {
			logger.SetOutput(os.Stderr)
		}

		var pal color.Palette
		if file := c.String("palette"); file != "" {
			var err error
			if pal, err = palette.Load(file); err != nil {
				return cli.Exit(err, 2)
			}
		}

		m, err := decodeImage(c.Args().First())
		if err != nil {
			return cli.Exit(fmt.Sprintf("%s: %v", c.Args().First(), err), 2)
		}

		conv := spritetools.New(spritetools.Options{
			Cell: sprite.Config{MaxPlanes: c.Int("count")},
		}, logger)

		report, err := conv.Validate(m, pal)
		if err != nil {
			return cli.Exit(err, 2)
		}

		if len(report) == 0 {
			fmt.Println("no errors detected")
			return nil
		}
		for _, v := range report {
			fmt.Println(v)
		}
		return cli.Exit(fmt.Sprintf("%d invalid scanlines", len(report)), 1)
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func decodeImage(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(file), ".sc5") {
		return sc5.Decode(f)
	}
	m, _, err := image.Decode(f)
	return m, err
}
