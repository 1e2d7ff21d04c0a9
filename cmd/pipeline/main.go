package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"studioshot/internal/domain"
	"studioshot/internal/infra"
	"studioshot/internal/pipeline"
	"studioshot/internal/pipeline/codec"
	"studioshot/internal/pipeline/reflection"
	"studioshot/internal/storage"
	"studioshot/pkg/zip"
)

func main() {
	_ = godotenv.Load()

	withReflections := flag.Bool("reflect", false, "synthesize reflection strips for transparent inputs")
	packArchive := flag.Bool("zip", false, "pack the run's outputs into a zip archive")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: pipeline [-reflect] [-zip] <image file> ...")
		os.Exit(2)
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("storage init failed")
	}

	cdc := codec.NewStd()
	pipe := pipeline.New(cdc, logger)

	runPrefix := path.Join("runs", uuid.NewString())

	var entries []zip.Entry
	var subjects []domain.RawImage
	processed, failed := 0, 0

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Error().Err(err).Str("file", file).Msg("read failed")
			failed++
			continue
		}
		img := domain.RawImage{Name: filepath.Base(file), MIME: mimeForFile(file), Data: data}

		out, err := pipe.Process(ctx, img, cfg.MaxDimension, cfg.TargetBytes)
		if err != nil {
			logger.Error().Err(err).Str("file", file).Msg("processing failed")
			failed++
			continue
		}

		key, err := store.WriteImage(ctx, runPrefix, out.RawImage)
		if err != nil {
			logger.Error().Err(err).Str("file", file).Msg("store failed")
			failed++
			continue
		}

		logger.Info().
			Str("key", key).
			Int("width", out.Dimensions.Width).
			Int("height", out.Dimensions.Height).
			Int64("bytes", out.Size()).
			Msg("image stored")

		entries = append(entries, zip.Entry{Name: out.Name, MIME: out.MIME, Data: out.Data})
		processed++

		// Reflections only make sense for alpha-capable subjects that have
		// already been through background removal.
		if *withReflections && hasAlpha(img.MIME) {
			subjects = append(subjects, img)
		}
	}

	if *withReflections && len(subjects) > 0 {
		opts := reflection.Options{
			Intensity:    cfg.ReflectionIntensity,
			Height:       cfg.ReflectionHeight,
			Blur:         cfg.ReflectionBlur,
			FadeStrength: cfg.ReflectionFade,
			OffsetPX:     cfg.ReflectionOffsetPX,
		}
		synth := reflection.NewSynthesizer(cdc, logger)
		results, err := synth.GenerateBatch(ctx, subjects, opts)
		if err != nil {
			logger.Error().Err(err).Msg("reflection batch failed")
		} else {
			for _, res := range results {
				key, err := store.WriteImage(ctx, runPrefix, res.Reflection)
				if err != nil {
					logger.Error().Err(err).Str("source", res.Source).Msg("store reflection failed")
					continue
				}
				logger.Info().Str("key", key).Str("source", res.Source).Msg("reflection stored")
				entries = append(entries, zip.Entry{Name: res.Reflection.Name, MIME: res.Reflection.MIME, Data: res.Reflection.Data})
			}
		}
	}

	if *packArchive && len(entries) > 0 {
		archive, err := zip.Archive(entries)
		if err != nil {
			logger.Error().Err(err).Msg("archive failed")
		} else if key, err := store.Write(ctx, runPrefix+".zip", archive); err != nil {
			logger.Error().Err(err).Msg("store archive failed")
		} else {
			logger.Info().Str("key", key).Msg("archive stored")
		}
	}

	logger.Info().Int("processed", processed).Int("failed", failed).Msg("run complete")
	if failed > 0 {
		os.Exit(1)
	}
}

func mimeForFile(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".jpg", ".jpeg":
		return domain.MIMEJPEG
	case ".png":
		return domain.MIMEPNG
	case ".gif":
		return domain.MIMEGIF
	case ".webp":
		return domain.MIMEWebP
	default:
		return "application/octet-stream"
	}
}

func hasAlpha(mime string) bool {
	return mime == domain.MIMEPNG || mime == domain.MIMEWebP || mime == domain.MIMEGIF
}
