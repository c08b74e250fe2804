package main

import (
	"context"
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
	"golang.org/x/sync/errgroup"

	"github.com/pvmm/spritetools"
	"github.com/pvmm/spritetools/codegen"
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

	app.Name = "png2sprites"
	app.Usage = "PNG to MSX2 OR-color sprite converter"
	app.Version = "2.0.0"
	app.ArgsUsage = "IMAGE [IMAGE...]"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "id",
			Aliases: []string{"i"},
			Value:   "sprites",
			Usage:   "variable name",
		},
		&cli.BoolFlag{
			Name:    "basic",
			Aliases: []string{"b"},
			Usage:   "BASIC output (default: C header)",
		},
		&cli.BoolFlag{
			Name:    "asm",
			Aliases: []string{"a"},
			Usage:   "ASM output (default: C header)",
		},
		&cli.BoolFlag{
			Name:    "colors",
			Aliases: []string{"c"},
			Usage:   "include palette colors in C or ASM output",
		},
		&cli.StringFlag{
			Name:    "palette",
			Aliases: []string{"p"},
			Usage:   "set of colors to use from file",
		},
		&cli.BoolFlag{
			Name:    "minimise",
			Aliases: []string{"m"},
			Usage:   "try to minimise the palette by brute force (may be slow)",
		},
		&cli.IntFlag{
			Name:  "planes",
			Value: sprite.DefaultMaxPlanes,
			Usage: "maximum overlapping sprites per slot",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "concurrent workers for the minimiser (default: one per CPU)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "stop the minimiser after this long, keeping the best found",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output file (default: stdout)",
		},
		&cli.BoolFlag{
			Name:  "nearest",
			Usage: "map colors missing from the palette to the nearest entry",
		},
		&cli.BoolFlag{
			Name:  "quantize",
			Usage: "reduce images with too many colors instead of failing",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Action = func(c *cli.Context) error {
		if c.NArg() < 1 {
			cli.ShowAppHelpAndExit(c, 1)
		}

		logger := log.New(io.Discard, "", 0)
		if c.Bool("verbose") {
			logger.SetOutput(os.Stderr)
		}

		var pal color.Palette
		if file := c.String("palette"); file != "" {
			var err error
			if pal, err = palette.Load(file); err != nil {
				return cli.Exit(err, 1)
			}
		}

		conv := spritetools.New(spritetools.Options{
			Cell:     sprite.Config{MaxPlanes: c.Int("planes")},
			Minimise: c.Bool("minimise"),
			Workers:  c.Int("workers"),
			Nearest:  c.Bool("nearest"),
			Quantize: c.Bool("quantize"),
		}, logger)

		ctx := context.Background()
		if timeout := c.Duration("timeout"); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		g, ctx := errgroup.WithContext(ctx)
		for _, file := range c.Args().Slice() {
			file := file
			g.Go(func() error {
				return convertFile(ctx, conv, c, file, pal)
			})
		}
		if err := g.Wait(); err != nil {
			return cli.Exit(err, 1)
		}

		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func convertFile(ctx context.Context, conv *spritetools.Converter, c *cli.Context, file string, pal color.Palette) error {
	m, err := decodeImage(file)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	res, outPal, err := conv.Convert(ctx, m, pal)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	out, done, err := outputFor(c, file)
	if err != nil {
		return err
	}
	defer done()

	id := c.String("id")
	switch {
	case c.Bool("basic"):
		err = codegen.WriteBasic(out, id, res, outPal)
	case c.Bool("asm"):
		err = codegen.WriteAsm(out, id, res, outPal, c.Bool("colors"))
	default:
		err = codegen.WriteC(out, id, res, outPal, c.Bool("colors"))
	}
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	return nil
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

// outputFor picks the destination for one input: the --output flag or
// stdout for a single input, a sibling file with the right extension
// when converting several at once.
func outputFor(c *cli.Context, file string) (io.Writer, func() error, error) {
	if c.NArg() == 1 {
		if out := c.String("output"); out != "" {
			f, err := os.Create(out)
			if err != nil {
				return nil, nil, err
			}
			return f, f.Close, nil
		}
		return os.Stdout, func() error { return nil }, nil
	}

	ext := ".h"
	switch {
	case c.Bool("basic"):
		ext = ".bas"
	case c.Bool("asm"):
		ext = ".asm"
	}
	name := strings.TrimSuffix(file, filepath.Ext(file)) + ext
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
