package main

import (
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/inkgallery/inkgallery"
	"github.com/inkgallery/inkgallery/profile"
	"github.com/inkgallery/inkgallery/transcode"
)

const (
	defaultDataDir = "/data/inkgallery"
	metadataDB     = "metadata.db"
	imagesDir      = "images"
	displaysDir    = "displays"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func newGallery(c *cli.Context) (*inkgallery.Gallery, error) {
	dataDir := c.String("data-dir")

	images := filepath.Join(dataDir, imagesDir)
	if err := os.MkdirAll(images, 0o755); err != nil {
		return nil, err
	}

	db, err := inkgallery.NewMetadataDB(filepath.Join(dataDir, metadataDB))
	if err != nil {
		return nil, err
	}

	profiles, err := profile.NewStore(filepath.Join(dataDir, displaysDir))
	if err != nil {
		db.Close()
		return nil, err
	}

	return inkgallery.New(db, profiles, images, newLogger(c)), nil
}

func main() {
	app := cli.NewApp()

	app.Name = "inkgallery"
	app.Usage = "e-ink gallery management service"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "data-dir",
			EnvVars: []string{"INKGALLERY_DATA"},
			Value:   defaultDataDir,
			Usage:   "path to gallery data",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:  "serve",
			Usage: "Run the gallery HTTP service",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "addr",
					EnvVars: []string{"INKGALLERY_ADDR"},
					Value:   ":8112",
					Usage:   "listen address",
				},
			},
			Action: func(c *cli.Context) error {
				g, err := newGallery(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer g.Close()

				server := inkgallery.NewServer(g)
				log.Printf("listening on %s\n", c.String("addr"))
				if err := http.ListenAndServe(c.String("addr"), server.Handler()); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "scan",
			Usage:     "Scan a directory tree and register images",
			ArgsUsage: "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				g, err := newGallery(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer g.Close()

				if err := g.Scan(c.Args().First()); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "convert",
			Usage:     "Transcode one image file for a display",
			ArgsUsage: "INPUT OUTPUT",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "display",
					Usage:    "display profile name",
					Required: true,
				},
				&cli.BoolFlag{
					Name:  "no-dither",
					Usage: "disable error diffusion",
				},
				&cli.StringFlag{
					Name:  "fit",
					Value: "stretch",
					Usage: "stretch, cover or contain",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				store, err := profile.NewStore(filepath.Join(c.String("data-dir"), displaysDir))
				if err != nil {
					return cli.Exit(err, 1)
				}

				p, err := store.Load(c.String("display"))
				if err != nil {
					return cli.Exit(err, 1)
				}

				data, err := os.ReadFile(c.Args().Get(0))
				if err != nil {
					return cli.Exit(err, 1)
				}

				o := transcode.Options{NoDither: c.Bool("no-dither")}
				switch c.String("fit") {
				case "stretch":
					o.Fit = transcode.FitStretch
				case "cover":
					o.Fit = transcode.FitCover
				case "contain":
					o.Fit = transcode.FitContain
				default:
					return cli.Exit("fit must be stretch, cover or contain", 1)
				}

				packed, err := transcode.New().TranscodeOptions(data, p, o)
				if err != nil {
					return cli.Exit(err, 1)
				}

				if err := os.WriteFile(c.Args().Get(1), packed, 0o644); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "displays",
			Usage: "List available display profiles",
			Action: func(c *cli.Context) error {
				store, err := profile.NewStore(filepath.Join(c.String("data-dir"), displaysDir))
				if err != nil {
					return cli.Exit(err, 1)
				}

				displays, err := store.List()
				if err != nil {
					return cli.Exit(err, 1)
				}

				for _, d := range displays {
					suffix := ""
					if d.Custom {
						suffix = " (custom)"
					}
					os.Stdout.WriteString(d.Name + suffix + "\n")
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
