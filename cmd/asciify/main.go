package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bodgit/asciify"
	"github.com/bodgit/asciify/glyph"
	"github.com/bodgit/asciify/raster"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

const (
	defaultDB     = "asciify.db"
	defaultWidth  = 80
	defaultListen = ":8080"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func newConverter(c *cli.Context, opts ...asciify.Option) (*asciify.Converter, func() error, error) {
	logger := newLogger(c)

	ramp, err := glyph.NewRamp(c.String("ramp"))
	if err != nil {
		return nil, nil, err
	}
	if c.Bool("invert") {
		ramp = ramp.Reverse()
	}

	filter, err := raster.ParseFilter(c.String("filter"))
	if err != nil {
		return nil, nil, err
	}

	opts = append([]asciify.Option{
		asciify.WithRamp(ramp),
		asciify.WithFilter(filter),
		asciify.WithLogger(logger),
	}, opts...)

	closer := func() error { return nil }
	if !c.Bool("no-cache") {
		cache, err := asciify.NewCache(c.String("db"))
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, asciify.WithCache(cache))
		closer = cache.Close
	}

	return asciify.New(opts...), closer, nil
}

func width(c *cli.Context) int {
	if c.IsSet("width") {
		return c.Int("width")
	}
	return terminalWidth()
}

func main() {
	// Settings in .env are picked up through the EnvVars of each flag
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatal(err)
	}

	app := cli.NewApp()

	app.Name = "asciify"
	app.Usage = "Render images as ASCII art"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	filters := make([]string, 0, len(raster.Filters()))
	for _, f := range raster.Filters() {
		filters = append(filters, f.String())
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"ASCIIFY_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to render cache database",
		},
		&cli.BoolFlag{
			Name:    "no-cache",
			EnvVars: []string{"ASCIIFY_NO_CACHE"},
			Usage:   "don't read or write the render cache",
		},
		&cli.StringFlag{
			Name:    "ramp",
			EnvVars: []string{"ASCIIFY_RAMP"},
			Value:   glyph.DefaultGlyphs,
			Usage:   "glyphs ordered from darkest to lightest",
		},
		&cli.StringFlag{
			Name:    "filter",
			EnvVars: []string{"ASCIIFY_FILTER"},
			Value:   raster.DefaultFilter.String(),
			Usage:   "resampling filter, one of " + strings.Join(filters, ", "),
		},
		&cli.BoolFlag{
			Name:  "invert",
			Usage: "reverse the ramp for light text on a dark background",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	widthFlag := &cli.IntFlag{
		Name:    "width",
		Aliases: []string{"w"},
		Usage:   "number of columns, defaults to the terminal width",
	}

	app.Commands = []*cli.Command{
		{
			Name:        "convert",
			Usage:       "Render images to standard output",
			Description: "Use - to read an image from standard input.",
			ArgsUsage:   "FILE...",
			Flags:       []cli.Flag{widthFlag},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				m, closer, err := newConverter(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer closer()

				for _, file := range c.Args().Slice() {
					var b []byte
					if file == "-" {
						b, err = io.ReadAll(os.Stdin)
					} else {
						b, err = os.ReadFile(file)
					}
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					if err := m.ConvertTo(os.Stdout, b, width(c)); err != nil {
						return cli.NewExitError(fmt.Errorf("%s: %w", file, err), 1)
					}
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Render every image below a directory",
			Description: "Each image is rendered to a .txt file next to it.",
			ArgsUsage:   "DIRECTORY",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "width",
					Aliases: []string{"w"},
					Value:   defaultWidth,
					Usage:   "number of columns",
				},
				&cli.IntFlag{
					Name:  "workers",
					Value: 10,
					Usage: "number of images to render at once",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				m, closer, err := newConverter(c, asciify.WithWorkers(c.Int("workers")))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer closer()

				if err := m.Scan(c.Context, c.Args().First(), c.Int("width")); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "serve",
			Usage:       "Render images posted over HTTP",
			Description: "POST an image to / with an optional ?cols=N query parameter.",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "listen",
					Aliases: []string{"l"},
					EnvVars: []string{"ASCIIFY_LISTEN"},
					Value:   defaultListen,
					Usage:   "address to listen on",
				},
			},
			Action: func(c *cli.Context) error {
				m, closer, err := newConverter(c, asciify.WithRowWorkers(runtime.NumCPU()))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer closer()

				srv := &http.Server{
					Addr:         c.String("listen"),
					Handler:      m.Handler(),
					ReadTimeout:  10 * time.Second,
					WriteTimeout: 30 * time.Second,
				}

				newLogger(c).Printf("Listening on %s\n", srv.Addr)
				if err := srv.ListenAndServe(); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "purge",
			Usage: "Remove everything from the render cache",
			Action: func(c *cli.Context) error {
				cache, err := asciify.NewCache(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer cache.Close()

				n, err := cache.Length()
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if err := cache.Purge(); err != nil {
					return cli.NewExitError(err, 1)
				}

				newLogger(c).Printf("Removed %d renderings\n", n)

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
