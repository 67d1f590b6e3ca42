package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/ivanvanderbyl/paperlayout"
	"github.com/ivanvanderbyl/paperlayout/crossref"
	"github.com/ivanvanderbyl/paperlayout/detect"
)

func main() {
	cmd := &cli.Command{
		Name:  "paperlayout",
		Usage: "Reconstruct the structure of scientific papers from PDF",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Input PDF file path (repeatable)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: markdown or json",
				Value: "markdown",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: stdout)",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "detector-url",
				Usage: "Table detection service endpoint (default: ruling lines)",
			},
			&cli.StringFlag{
				Name:  "crossref",
				Usage: "Contact address for Crossref DOI lookups (default: disabled)",
			},
			&cli.BoolFlag{
				Name:  "blocks",
				Usage: "Include classified blocks in JSON output",
			},
			&cli.BoolFlag{
				Name:  "images",
				Usage: "Write accepted figures as PNG next to the output",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Number of documents processed in parallel",
				Value: 2,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn or error",
				Value: "warn",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: console or json",
				Value: "console",
			},
		},
		Action: reconstruct,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func reconstruct(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd.String("log-level"), cmd.String("log-format"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	config := paperlayout.DefaultConfig()
	if path := cmd.String("config"); path != "" {
		if config, err = paperlayout.LoadConfig(path); err != nil {
			return err
		}
	}
	config.Logger = logger
	if cmd.Bool("images") {
		config.RenderImages = true
	}

	var opts []paperlayout.Option
	if url := cmd.String("detector-url"); url != "" {
		opts = append(opts, paperlayout.WithDetector(detect.NewHTTPDetector(url)))
	}
	if mailto := cmd.String("crossref"); mailto != "" {
		opts = append(opts, paperlayout.WithLookup(paperlayout.CrossrefLookup(crossref.NewClient(mailto))))
	}

	inputs := cmd.StringSlice("input")
	concurrency := max(cmd.Int("concurrency"), 1)

	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  concurrency,
		MaxTotal: concurrency,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise pdfium: %w", err)
	}
	defer pool.Close()

	outputs := make([]string, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, input := range inputs {
		g.Go(func() error {
			instance, err := pool.GetInstance(time.Second * 30)
			if err != nil {
				return fmt.Errorf("failed to get pdfium instance: %w", err)
			}
			defer instance.Close()

			converter := paperlayout.NewConverterWithConfig(instance, config, opts...)
			doc, err := converter.ConvertFile(gctx, input)
			if err != nil {
				return fmt.Errorf("failed to reconstruct %s: %w", input, err)
			}
			logger.Info("reconstructed", zap.String("input", input), zap.String("document_id", doc.ID))

			out, err := render(doc, cmd.String("format"), cmd.Bool("blocks"))
			if err != nil {
				return err
			}
			if dir := cmd.String("out"); dir != "" {
				return writeOutputs(dir, input, cmd.String("format"), out, doc)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, out := range outputs {
		if out != "" {
			fmt.Println(out)
		}
	}
	return nil
}

func render(doc *paperlayout.Document, format string, withBlocks bool) (string, error) {
	switch format {
	case "markdown", "md":
		return doc.ToMarkdown(), nil
	case "json":
		data, err := json.MarshalIndent(doc.Result(withBlocks), "", "  ")
		if err != nil {
			return "", errors.Wrap(err, "failed to encode result")
		}
		return string(data), nil
	}
	return "", errors.Errorf("unknown format %q", format)
}

func writeOutputs(dir, input, format, out string, doc *paperlayout.Document) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	ext := ".md"
	if format == "json" {
		ext = ".json"
	}
	if err := os.WriteFile(filepath.Join(dir, base+ext), []byte(out), 0o644); err != nil {
		return errors.Wrap(err, "failed to write output file")
	}

	for i, img := range doc.Images {
		if !img.IsImage || img.Picture == nil {
			continue
		}
		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("%s-figure-%d.png", base, i+1)))
		if err != nil {
			return errors.Wrap(err, "failed to create figure file")
		}
		if err := png.Encode(f, img.Picture); err != nil {
			f.Close()
			return errors.Wrap(err, "failed to encode figure")
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
