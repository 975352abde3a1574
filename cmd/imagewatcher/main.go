package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Roelanb/imagewatcher/internal/api"
	"github.com/Roelanb/imagewatcher/internal/config"
	"github.com/Roelanb/imagewatcher/internal/events"
	"github.com/Roelanb/imagewatcher/internal/observability"
	"github.com/Roelanb/imagewatcher/internal/pipeline"
	"github.com/Roelanb/imagewatcher/internal/runner"
	"github.com/Roelanb/imagewatcher/internal/storage"
	"github.com/Roelanb/imagewatcher/internal/watch"
)

type options struct {
	configPath string
	watch      bool
	compile    bool
	logLevel   string
	logFormat  string
	apiAddr    string
}

// registerFlags registers the command line flags on fs. -w and -c are short
// forms of -watch and -compile.
func registerFlags(fs *flag.FlagSet) *options {
	o := &options{}
	fs.StringVar(&o.configPath, "config", config.DefaultPath, "Path to config YAML file")
	fs.BoolVar(&o.watch, "watch", false, "Sets program to watch mode")
	fs.BoolVar(&o.watch, "w", false, "Shorthand for -watch")
	fs.BoolVar(&o.compile, "compile", false, "Sets program to compile mode")
	fs.BoolVar(&o.compile, "c", false, "Shorthand for -compile")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: debug|info|warn|error (default from config)")
	fs.StringVar(&o.logFormat, "log-format", "", "Log format: console|json (default from config)")
	fs.StringVar(&o.apiAddr, "api-addr", "", "Status API listen address (default from config, empty disables)")
	return o
}

// Version injected at build time with: -ldflags "-X 'main.version=1.2.3'"
var version = "dev"

func main() {
	opts := registerFlags(flag.CommandLine)
	flag.Parse()
	os.Exit(run(opts))
}

func run(o *options) int {
	bootLevel := o.logLevel
	if bootLevel == "" {
		bootLevel = observability.EnvLogLevel("info")
	}
	boot := observability.NewLogger(bootLevel, o.logFormat)
	defer boot.Sync() //nolint:errcheck

	mode, err := resolveMode(o.watch, o.compile, os.Getenv("IMAGE_WATCHER_MODE"), os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Mode error: %v\n", err)
		return 1
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		boot.Errorw("failed to load config", "path", o.configPath, "error", err)
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}
	files, err := config.WatchList(cfg)
	if err != nil {
		boot.Errorw("invalid watch list", "path", o.configPath, "error", err)
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	level, format := cfg.LogLevel, cfg.LogFormat
	if o.logLevel != "" {
		level = o.logLevel
	}
	if o.logFormat != "" {
		format = o.logFormat
	}
	logger := observability.NewLogger(level, format)
	defer logger.Sync() //nolint:errcheck
	logger.Infow("config loaded", "path", o.configPath, "files", len(files), "mode", mode.String(), "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var execOpts []pipeline.Option
	if m := cfg.Mirror; m.Endpoint != "" {
		mirror, err := storage.NewMirror(ctx, m.Endpoint, m.AccessKey, m.SecretKey, m.Bucket, m.Prefix, m.UseSSL)
		if err != nil {
			logger.Errorw("failed to connect mirror", "endpoint", m.Endpoint, "bucket", m.Bucket, "error", err)
			return 1
		}
		execOpts = append(execOpts, pipeline.WithMirror(mirror))
	}
	exec := pipeline.NewExecutor(logger, pipeline.NewFileCodec(cfg.JPEGQuality), execOpts...)

	ropts := []runner.Option{runner.WithPollInterval(cfg.PollInterval)}
	if cfg.StateDB != "" {
		store, err := runner.OpenBBolt(cfg.StateDB)
		if err != nil {
			logger.Errorw("failed to open state store", "path", cfg.StateDB, "error", err)
			return 1
		}
		defer store.Close()
		ropts = append(ropts, runner.WithStore(store))
	}
	if len(cfg.Events.Brokers) > 0 {
		pub := events.NewPublisher(cfg.Events.Brokers, cfg.Events.Topic)
		defer pub.Close()
		ropts = append(ropts, runner.WithPublisher(pub))
	}
	if mode == runner.ModeWatch && cfg.Notify {
		wake, closeNotifier, err := startNotifier(ctx, files)
		if err != nil {
			logger.Errorw("failed to start notifier", "error", err)
			return 1
		}
		defer closeNotifier()
		ropts = append(ropts, runner.WithWake(wake))
	}

	board := runner.NewBoard(files)
	ropts = append(ropts, runner.WithBoard(board))

	addr := cfg.APIAddr
	if o.apiAddr != "" {
		addr = o.apiAddr
	}
	if addr != "" {
		srv := api.New(logger, board, addr)
		if err := srv.Start(ctx); err != nil {
			logger.Errorw("failed to start api server", "addr", addr, "error", err)
			return 1
		}
		defer func() {
			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shCtx)
		}()
	}

	r := runner.New(logger, files, exec, ropts...)
	if err := r.Run(ctx, mode); err != nil && ctx.Err() == nil {
		return report(logger, err)
	}
	logger.Infow("shutdown complete", "mode", mode.String())
	return 0
}

func startNotifier(ctx context.Context, files []*pipeline.WatchedFile) (<-chan watch.Event, func(), error) {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	n, err := watch.NewNotifier(watch.Options{Paths: paths, Debounce: 100 * time.Millisecond})
	if err != nil {
		return nil, nil, err
	}
	ch, err := n.Start(ctx)
	if err != nil {
		return nil, nil, err
	}
	return ch, n.Close, nil
}

func report(logger *zap.SugaredLogger, err error) int {
	var fe *runner.FatalError
	if errors.As(err, &fe) {
		logger.Errorw("fatal error, stopping", "path", fe.Path, "reason", fe.Reason, "error", fe.Err)
	} else {
		logger.Errorw("run failed", "error", err)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}
