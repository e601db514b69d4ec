package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/bodgit/concrete"
	"github.com/bodgit/concrete/analysis"
	"github.com/bodgit/concrete/catalog"
	"github.com/bodgit/concrete/config"
	"github.com/bodgit/concrete/framefile"
	"github.com/bodgit/concrete/quantizer"
	"github.com/bodgit/concrete/source"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const frameFileExt = ".vmfr"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, err
	}
	if c.IsSet("db") {
		cfg.DB = c.String("db")
	}
	return cfg, nil
}

func logger(c *cli.Context) zerolog.Logger {
	return newLogger(os.Stderr, c.Bool("verbose"))
}

func open(cfg config.Config, logger zerolog.Logger) (*concrete.Concrete, *catalog.DB, error) {
	db, err := catalog.Open(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	return concrete.New(db, quantizer.New(), logger), db, nil
}

func sourceOptions(c *cli.Context, cfg config.Config) (source.Options, error) {
	opts := source.Options{
		Width:  cfg.Width,
		Height: cfg.Height,
		Flip:   cfg.Flip || c.Bool("flip"),
	}
	if c.IsSet("width") {
		opts.Width = c.Int("width")
	}
	if c.IsSet("height") {
		opts.Height = c.Int("height")
	}

	scale := cfg.Scale
	if c.IsSet("scale") {
		scale = c.String("scale")
	}
	scaler, ok := source.Scalers[scale]
	if !ok {
		return source.Options{}, fmt.Errorf("unknown scaler %q", scale)
	}
	opts.Scaler = scaler

	if c.IsSet("source-fps") {
		opts.Interval = source.Interval(c.Float64("source-fps"), float64(cfg.FPS))
	}

	return opts, nil
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "width",
			Usage: "frame width in cells",
		},
		&cli.IntFlag{
			Name:  "height",
			Usage: "frame height in cells",
		},
		&cli.BoolFlag{
			Name:  "flip",
			Usage: "flip images vertically",
		},
		&cli.StringFlag{
			Name:  "scale",
			Usage: "image scaler, one of nearest, bilinear or catmull",
		},
		&cli.Float64Flag{
			Name:  "source-fps",
			Usage: "frame rate of the images, frames are dropped to match the playback rate",
		},
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "concrete"
	app.Usage = "Concrete palette video conversion and playback utility"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"CONCRETE_CONFIG"},
			Usage:   "directory containing " + config.File,
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"CONCRETE_DB"},
			Usage:   "path to database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "process",
			Usage:       "Convert a directory of images into a frame file",
			Description: "Images are read in frame number order, scaled, quantized and written to OUTPUT, which defaults to NAME" + frameFileExt + " in the processed directory.",
			ArgsUsage:   "DIRECTORY [OUTPUT]",
			Flags: append(sourceFlags(),
				&cli.StringFlag{
					Name:  "name",
					Usage: "catalog name, defaults to the directory name",
				},
				&cli.BoolFlag{
					Name:  "compress",
					Usage: "zstd compress the frame file",
				},
				&cli.IntFlag{
					Name:  "workers",
					Usage: "number of quantizing workers",
				},
			),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cfg, err := loadConfig(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				opts, err := sourceOptions(c, cfg)
				if err != nil {
					return cli.Exit(err, 1)
				}

				dir := c.Args().First()
				name := c.String("name")
				if name == "" {
					name = filepath.Base(filepath.Clean(dir))
				}

				out := c.Args().Get(1)
				if out == "" {
					out = filepath.Join(cfg.Processed, name+frameFileExt)
				}

				m, db, err := open(cfg, logger(c))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				if _, err := m.Process(c.Context, dir, out, concrete.ProcessOptions{
					Options:  opts,
					Name:     name,
					Compress: c.Bool("compress"),
					Workers:  c.Int("workers"),
				}); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Scan filesystem and catalog frame files",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cfg, err := loadConfig(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				m, db, err := open(cfg, logger(c))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				if err := m.Scan(c.Args().First()); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "list",
			Usage: "List cataloged frame files",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "delete",
					Usage: "remove the named entries instead",
				},
			},
			ArgsUsage: "[NAME...]",
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				db, err := catalog.Open(cfg.DB)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				if c.Bool("delete") {
					for _, name := range c.Args().Slice() {
						if err := db.Delete(name); err != nil {
							return cli.Exit(fmt.Errorf("%s: %w", name, err), 1)
						}
					}
					return nil
				}

				videos, err := db.List()
				if err != nil {
					return cli.Exit(err, 1)
				}

				w := tabwriter.NewWriter(c.App.Writer, 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tFRAMES\tSIZE\tCOMPRESSED\tPATH")
				for _, v := range videos {
					fmt.Fprintf(w, "%s\t%d\t%dx%d\t%t\t%s\n", v.Name, v.Frames, v.Width, v.Height, v.Compressed, v.Path)
				}
				return w.Flush()
			},
		},
		{
			Name:      "info",
			Usage:     "Show the header of a frame file",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				file := c.Args().First()
				if !framefile.IsValidFile(file) {
					return cli.Exit(fmt.Errorf("%s: %w", file, framefile.ErrInvalidFormat), 1)
				}

				rc, err := framefile.Open(file)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer rc.Close()

				cfg, err := framefile.DecodeConfig(rc)
				if err != nil {
					return cli.Exit(err, 1)
				}

				f, err := os.Open(file)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer f.Close()

				fmt.Fprintf(c.App.Writer, "version:    %d\nframes:     %d\nsize:       %dx%d\ncompressed: %t\n", cfg.Version, cfg.Frames, cfg.Width, cfg.Height, framefile.IsCompressed(f))

				return nil
			},
		},
		{
			Name:      "export",
			Usage:     "Write each frame of a frame file as a PNG image",
			ArgsUsage: "FILE|NAME DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cfg, err := loadConfig(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				m, db, err := open(cfg, logger(c))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				file, err := m.Resolve(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}

				if _, err := m.Export(file, c.Args().Get(1)); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "play",
			Usage:       "Play a frame file or directory of images in the terminal",
			Description: "Keys: space pauses and resumes, c clears, q or escape quits.",
			ArgsUsage:   "FILE|NAME|DIRECTORY",
			Flags: append(sourceFlags(),
				&cli.IntFlag{
					Name:  "fps",
					Usage: "playback rate",
				},
				&cli.StringFlag{
					Name:  "metrics",
					Usage: "serve prometheus metrics on this address, e.g. :9100",
				},
				&cli.StringFlag{
					Name:  "log",
					Usage: "write log messages to this file",
				},
			),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				cfg, err := loadConfig(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				if c.IsSet("fps") {
					cfg.FPS = c.Int("fps")
				}

				if err := play(c, cfg, c.Args().First()); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "fit",
			Usage:     "Report how well the palette covers the dominant colors of an image",
			ArgsUsage: "IMAGE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "colors",
					Value: 8,
					Usage: "number of dominant colors",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				m, err := source.Load(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}

				matches, err := analysis.Fit(m, c.Int("colors"))
				if err != nil {
					return cli.Exit(err, 1)
				}

				w := tabwriter.NewWriter(c.App.Writer, 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "COLOR\tSHARE\tNEAREST\tDISTANCE")
				for _, match := range matches {
					fmt.Fprintf(w, "#%02X%02X%02X\t%5.1f%%\t%s\t%d\n", match.Color.R, match.Color.G, match.Color.B, match.Share*100, strings.TrimSuffix(match.Entry.Tag, "_concrete"), match.Distance)
				}
				return w.Flush()
			},
		},
		{
			Name:  "config",
			Usage: "Print the effective configuration",
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				return config.Dump(c.App.Writer, cfg)
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger := newLogger(os.Stderr, false)
		logger.Fatal().Err(err).Msg("")
	}
}
