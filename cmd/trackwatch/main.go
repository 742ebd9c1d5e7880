// Package main provides the trackwatch service entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"trackwatch/internal/engine"
	httpserver "trackwatch/internal/http"
	"trackwatch/internal/pipeline"
	"trackwatch/internal/source"
	"trackwatch/internal/store"
	"trackwatch/internal/track"
	"trackwatch/pkg/filter"
)

var (
	cfgFile string
	config  *engine.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "trackwatch",
	Short: "trackwatch - now-playing change detection service",
	Long: `trackwatch receives raw now-playing field payloads from heterogeneous
sources, detects meaningful changes, normalizes the extracted strings and
forwards a clean, rate-limited stream of state updates downstream.`,
	RunE: runTrackwatch,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("server-host", "0.0.0.0", "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", 8080, "HTTP server port")
	rootCmd.PersistentFlags().Duration("throttle-window", engine.DefaultThrottleWindow, "evaluation throttle window")
	rootCmd.PersistentFlags().Int("queue-size", 64, "pipeline queue size")
	rootCmd.PersistentFlags().Int("store-max-tracks", 10000, "seen store capacity")
	rootCmd.PersistentFlags().StringSlice("placeholder-art", nil, "art URLs treated as default placeholders")
	rootCmd.PersistentFlags().Bool("strip-video-suffixes", true, "strip bracketed video suffixes from track titles")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
	}

	viper.SetEnvPrefix("TRACKWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *engine.Config {
	cfg := engine.DefaultConfig()

	if host := viper.GetString("server-host"); host != "" {
		cfg.Server.Host = host
	}
	if port := viper.GetInt("server-port"); port != 0 {
		cfg.Server.Port = port
	}

	if level := viper.GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}

	if window := viper.GetDuration("throttle-window"); window > 0 {
		cfg.Engine.ThrottleWindow = window
	}
	if size := viper.GetInt("queue-size"); size > 0 {
		cfg.Engine.QueueSize = size
	}

	if maxTracks := viper.GetInt("store-max-tracks"); maxTracks > 0 {
		cfg.Store.MaxTracks = maxTracks
	}

	return cfg
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func buildFilter() *filter.Filter {
	f := filter.NewBase()

	if viper.GetBool("strip-video-suffixes") {
		site := filter.New()
		site.Append(track.FieldTrack, filter.StripPatterns(filter.VideoSuffixes))
		f = f.Extend(site)
	}

	return f
}

func runTrackwatch(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting trackwatch",
		zap.Duration("throttle_window", config.Engine.ThrottleWindow),
		zap.Int("store_max_tracks", config.Store.MaxTracks))

	seen := store.NewSeenStore(config.Store.MaxTracks, config.Store.BloomFalsePositiveRate)

	src := source.New(logger.Named("source"), viper.GetStringSlice("placeholder-art"))
	httpServer := httpserver.NewServer(&config.Server, src.Handler(), logger.Named("http"))

	pipe := pipeline.New(logger.Named("pipeline"),
		pipeline.ValidateStage{},
		pipeline.SeenStage{Store: seen},
	)

	// The reactor must not block; pipeline work crosses a queue boundary.
	updates := make(chan *pipeline.Song, config.Engine.QueueSize)

	reactor := func(state *track.State, changed []track.Field) {
		for _, f := range changed {
			httpServer.RecordChangedField(string(f))
		}

		// A reset delivers the default-everything payload with every field
		// listed as changed. A partial payload, e.g. timing-only, still
		// flows into the pipeline.
		if state.IsDefault() && len(changed) == len(track.AllFields) {
			httpServer.RecordReset()
			return
		}

		select {
		case updates <- &pipeline.Song{State: state}:
		default:
			logger.Warn("Pipeline queue full, dropping update")
		}
	}

	tracker := engine.NewTracker(src, buildFilter(), reactor, logger.Named("tracker"))
	scheduler := engine.NewScheduler(tracker, src, config.Engine.ThrottleWindow, logger.Named("scheduler"))
	defer scheduler.Stop()

	scheduler.OnEvaluated(func(changed int) {
		result := "unchanged"
		if changed > 0 {
			result = "changed"
		}
		httpServer.RecordEvaluation(result)
	})

	src.OnSignal(func() {
		outcome := scheduler.Signal()
		httpServer.RecordSignal(string(outcome))
	})
	src.OnConnectionChange(httpServer.SourceConnected, httpServer.SourceDisconnected)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Start(gCtx)
	})

	g.Go(func() error {
		for {
			select {
			case <-gCtx.Done():
				return nil
			case song := <-updates:
				start := time.Now()
				err := pipe.Process(gCtx, song)

				status := pipeline.StatusCompleted.String()
				if err != nil {
					status = pipeline.StatusFailed.String()
					logger.Warn("Pipeline run failed", zap.Error(err))
				}
				httpServer.RecordPipelineRun(status, time.Since(start))

				if err == nil && song.Flags.IsValid && !song.Flags.IsRepeat {
					logNowPlaying(song)
				}
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				httpServer.SetSeenTracks(seen.Size())
			}
		}
	})

	logger.Info("trackwatch started",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("trackwatch stopped with error", zap.Error(err))
		return err
	}

	logger.Info("trackwatch stopped gracefully")
	return nil
}

func logNowPlaying(song *pipeline.Song) {
	fields := []zap.Field{
		zap.Bool("isPlaying", song.State.IsPlaying),
	}
	if song.State.Artist != nil {
		fields = append(fields, zap.String("artist", *song.State.Artist))
	}
	if song.State.Track != nil {
		fields = append(fields, zap.String("track", *song.State.Track))
	}
	if song.State.Album != nil {
		fields = append(fields, zap.String("album", *song.State.Album))
	}
	if song.State.Duration != nil {
		fields = append(fields, zap.Float64("duration", *song.State.Duration))
	}

	logger.Info("Now playing", fields...)
}
