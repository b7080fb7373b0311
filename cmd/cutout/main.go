// Command cutout removes image backgrounds without the GUI.
//
// Usage:
//
//	cutout -in photo.jpg [-in more.png] [-bg transparent|#rrggbb|path] [-format png|webp] [-out dir]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"cutout-studio/internal/app"
	"cutout-studio/internal/config"
	"cutout-studio/internal/export"
	_ "cutout-studio/internal/export/webp"
	"cutout-studio/internal/image"
	"cutout-studio/internal/logging"
	"cutout-studio/internal/removal/backends"
	"cutout-studio/internal/version"
	"cutout-studio/pkg/colorutil"
)

// inputs collects repeated -in flags.
type inputs []string

func (in *inputs) String() string { return strings.Join(*in, ",") }

func (in *inputs) Set(v string) error {
	*in = append(*in, v)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cutout", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var in inputs
	fs.Var(&in, "in", "Input image (repeatable)")
	bg := fs.String("bg", "transparent", "Background: transparent, #rrggbb, or an image path")
	format := fs.String("format", "", "Output format: png or webp (default from config)")
	out := fs.String("out", "", "Output directory (default from config)")
	configPath := fs.String("config", "", "Path to a YAML config file")
	backend := fs.String("backend", "", "Removal backend: grabcut or http (default from config)")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return 0
	}
	in = append(in, fs.Args()...)
	if len(in) == 0 {
		fmt.Fprintln(stderr, "Usage: cutout -in <image> [-in <image>...] [-bg transparent|#rrggbb|path] [-format png|webp] [-out dir]")
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if *backend != "" {
		cfg.Removal.Backend = *backend
	}
	if *format != "" {
		cfg.Export.Format = *format
	}
	if *out != "" {
		cfg.Export.OutputDir = *out
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return 1
	}
	if err := logging.Setup(stderr, cfg.Log.Level); err != nil {
		fmt.Fprintf(stderr, "Invalid log level: %v\n", err)
		return 1
	}

	f, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	background, err := parseBackground(*bg, cfg.MaxFileBytes())
	if err != nil {
		fmt.Fprintf(stderr, "Invalid background: %v\n", err)
		return 1
	}
	remover, err := backends.New(cfg.Removal)
	if err != nil {
		fmt.Fprintf(stderr, "Background removal unavailable: %v\n", err)
		return 1
	}

	state := app.NewState(remover, cfg)
	ids, fileErrs := state.AddFiles(in)
	for _, err := range fileErrs {
		fmt.Fprintf(stderr, "Skipped: %v\n", err)
	}
	if len(ids) == 0 {
		return 1
	}

	status := 0
	if len(fileErrs) > 0 {
		status = 1
	}
	if err := state.ProcessAll(ctx); err != nil {
		fmt.Fprintf(stderr, "Processing failed: %v\n", err)
		status = 1
	}

	for _, id := range ids {
		it, ok := state.Item(id)
		if !ok || it.Status != app.StatusDone {
			continue
		}
		state.SetBackground(id, background)
		artifact, err := state.Export(id, f, export.Options{Quality: cfg.Export.WebPQuality})
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", it.Name, err)
			status = 1
			continue
		}
		path, err := export.WriteFile(cfg.Export.OutputDir, artifact)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", it.Name, err)
			status = 1
			continue
		}
		fmt.Fprintf(stdout, "%s -> %s\n", it.Name, path)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return 130
	}
	return status
}

// parseBackground reads the -bg flag. Anything that is neither
// "transparent" nor a hex colour is loaded as an image.
func parseBackground(s string, maxBytes int64) (image.Background, error) {
	bg := image.DefaultBackground()
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "transparent") {
		return bg, nil
	}
	if strings.HasPrefix(s, "#") {
		c, err := colorutil.ParseHex(s)
		if err != nil {
			return bg, err
		}
		bg.Type = image.BackgroundColor
		bg.Color = colorutil.ToHex(c)
		return bg, nil
	}
	src, err := image.Load(s, maxBytes)
	if err != nil {
		return bg, err
	}
	bg.Type = image.BackgroundImage
	bg.Image = src.Image
	return bg, nil
}
