package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"voxtract/internal/config"
	"voxtract/internal/extractor"
	"voxtract/internal/imaging"
	"voxtract/internal/logger"
	"voxtract/internal/results"
	"voxtract/internal/store"
	"voxtract/internal/testdata"
)

const (
	appName    = "voxtract"
	appVersion = "1.0.0"
)

type options struct {
	imagePath    string
	maskPath     string
	paramsPath   string
	binWidth     float64
	label        int
	interpolator string
	spacing      string
	inputSpacing string

	caseName string
	imageURL string
	maskURL  string
	cacheDir string

	dsn    string
	caseID string
}

func main() {
	opts := parseFlags()
	log := logger.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Debug("main", "starting", map[string]interface{}{
		"app":     appName,
		"version": appVersion,
	})

	if err := run(ctx, opts, log); err != nil {
		log.Error("main", err, map[string]interface{}{"app": appName})
		stop()
		os.Exit(1)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.imagePath, "image", "", "image path (.vvol or a 2D image file)")
	flag.StringVar(&opts.maskPath, "mask", "", "label mask path (.vvol or a 2D image file)")
	flag.StringVar(&opts.paramsPath, "params", "", "YAML parameter file")
	flag.Float64Var(&opts.binWidth, "bin-width", 0, "override gray-level bin width")
	flag.IntVar(&opts.label, "label", 0, "override region-of-interest label")
	flag.StringVar(&opts.interpolator, "interpolator", "", "override interpolator (nearest or linear)")
	flag.StringVar(&opts.spacing, "resample", "", "target spacing as x,y,z (enables resampling)")
	flag.StringVar(&opts.inputSpacing, "spacing", "1,1,1", "physical spacing of 2D image inputs as x,y,z")
	flag.StringVar(&opts.caseName, "case", "", "named test case to fetch instead of local paths")
	flag.StringVar(&opts.imageURL, "image-url", "", "image URL for the named case")
	flag.StringVar(&opts.maskURL, "mask-url", "", "mask URL for the named case")
	flag.StringVar(&opts.cacheDir, "cache-dir", "testdata-cache", "download cache directory")
	flag.StringVar(&opts.dsn, "dsn", "", "Postgres DSN; when set, numeric results are recorded")
	flag.StringVar(&opts.caseID, "case-id", "", "identifier stored with recorded results")
	flag.Parse()
	return opts
}

func run(ctx context.Context, opts options, log logger.Logger) error {
	settings, err := buildSettings(opts)
	if err != nil {
		return err
	}

	imagePath, maskPath, err := resolveInputs(ctx, opts, log)
	if err != nil {
		return err
	}

	spacing, err := parseSpacing(opts.inputSpacing)
	if err != nil {
		return fmt.Errorf("bad -spacing: %w", err)
	}

	vol, err := imaging.LoadVolumeAuto(imagePath, spacing)
	if err != nil {
		return err
	}
	mask, err := imaging.LoadMaskAuto(maskPath, spacing)
	if err != nil {
		return err
	}

	ext, err := extractor.New(settings, log)
	if err != nil {
		return err
	}

	res, err := ext.Execute(ctx, vol, mask)
	if err != nil {
		return err
	}

	if _, err := res.WriteTo(os.Stdout); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	if opts.dsn != "" {
		return recordResults(ctx, opts, imagePath, res, log)
	}
	return nil
}

func buildSettings(opts options) (config.Settings, error) {
	settings := config.Default()
	if opts.paramsPath != "" {
		loaded, err := config.LoadParams(opts.paramsPath)
		if err != nil {
			return config.Settings{}, err
		}
		settings = loaded
	}

	overrides := make(map[string]interface{})
	if opts.binWidth > 0 {
		overrides["binWidth"] = opts.binWidth
	}
	if opts.label > 0 {
		overrides["label"] = opts.label
	}
	if opts.interpolator != "" {
		overrides["interpolator"] = opts.interpolator
	}
	if opts.spacing != "" {
		target, err := parseSpacing(opts.spacing)
		if err != nil {
			return config.Settings{}, fmt.Errorf("bad -resample: %w", err)
		}
		overrides["resampledPixelSpacing"] = target[:]
	}
	if err := settings.Apply(overrides); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

func resolveInputs(ctx context.Context, opts options, log logger.Logger) (string, string, error) {
	if opts.imagePath != "" && opts.maskPath != "" {
		return opts.imagePath, opts.maskPath, nil
	}
	if opts.caseName != "" {
		fetcher := testdata.NewFetcher(opts.cacheDir, log)
		return fetcher.Resolve(ctx, testdata.Case{
			Name:     opts.caseName,
			ImageURL: opts.imageURL,
			MaskURL:  opts.maskURL,
		})
	}
	return "", "", fmt.Errorf("need -image and -mask, or -case with -image-url and -mask-url")
}

// parseSpacing parses "x,y,z" into per-axis spacing values.
func parseSpacing(raw string) ([3]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return [3]float64{}, fmt.Errorf("spacing needs 3 components, got %d", len(parts))
	}
	var spacing [3]float64
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return [3]float64{}, fmt.Errorf("invalid component %q: %w", part, err)
		}
		if value <= 0 {
			return [3]float64{}, fmt.Errorf("component %q must be positive", part)
		}
		spacing[i] = value
	}
	return spacing, nil
}

func caseIdentifier(opts options, imagePath string) string {
	if opts.caseID != "" {
		return opts.caseID
	}
	if opts.caseName != "" {
		return opts.caseName
	}
	base := filepath.Base(imagePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func recordResults(ctx context.Context, opts options, imagePath string, res *results.Results, log logger.Logger) error {
	recorder, err := store.NewRecorder(opts.dsn)
	if err != nil {
		return err
	}
	defer recorder.Close()

	if err := recorder.EnsureSchema(ctx); err != nil {
		return err
	}

	caseID := caseIdentifier(opts, imagePath)
	if err := recorder.Record(ctx, caseID, res); err != nil {
		return err
	}

	log.Info("main", "results recorded", map[string]interface{}{
		"case_id": caseID,
		"entries": res.Len(),
	})
	return nil
}
