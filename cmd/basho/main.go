package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/carlmjohnson/versioninfo"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"

	"github.com/basho-social/basho/basho"
	"github.com/basho-social/basho/firehose"
	"github.com/basho-social/basho/firehose/schedulers/parallel"
	"github.com/basho-social/basho/haiku"
)

func main() {
	app := cli.App{
		Name:    "basho",
		Usage:   "atproto firehose haiku detector",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "relay-host",
			Usage:   "full websocket path to the ATProto SubscribeRepos XRPC endpoint",
			Value:   "wss://bsky.network/xrpc/com.atproto.sync.subscribeRepos",
			EnvVars: []string{"BASHO_RELAY_HOST"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log level (debug, info, warn, error)",
			Value:   "info",
			EnvVars: []string{"BASHO_LOG_LEVEL"},
		},
		&cli.IntFlag{
			Name:    "metrics-port",
			Usage:   "listen port for prometheus metrics server",
			Value:   8345,
			EnvVars: []string{"BASHO_METRICS_PORT"},
		},
		&cli.IntFlag{
			Name:    "worker-count",
			Usage:   "number of workers to process stream messages",
			Value:   8,
			EnvVars: []string{"BASHO_WORKER_COUNT"},
		},
		&cli.IntFlag{
			Name:    "max-queue-size",
			Usage:   "max number of stream messages to queue before backpressure",
			Value:   64,
			EnvVars: []string{"BASHO_MAX_QUEUE_SIZE"},
		},
		&cli.StringFlag{
			Name:    "haiku-file",
			Usage:   "path to the file detected haikus are appended to",
			Value:   "haiku.txt",
			EnvVars: []string{"BASHO_HAIKU_FILE"},
		},
	}

	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func configLogger(cctx *cli.Context) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cctx.String("log-level")) {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

func run(cctx *cli.Context) error {
	ctx, cancel := context.WithCancel(cctx.Context)
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	logger := configLogger(cctx).With("source", "basho_main")

	u, err := url.Parse(cctx.String("relay-host"))
	if err != nil {
		return fmt.Errorf("invalid relay-host: %w", err)
	}

	store, err := haiku.NewStore(cctx.String("haiku-file"))
	if err != nil {
		return fmt.Errorf("opening haiku file: %w", err)
	}
	defer store.Close()

	consumer := basho.NewConsumer(logger, u.String(), store)

	pool := parallel.NewScheduler(
		cctx.Int("worker-count"),
		cctx.Int("max-queue-size"),
		u.Host,
		consumer.HandleMessage,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cctx.Int("metrics-port")),
		Handler: mux,
	}

	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("metrics server listening", "addr", metricServer.Addr)
		if err := metricServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server failed", "err", err)
			cancel()
		}
	}()

	logger.Info("connecting to stream", "url", u.String())
	con, _, err := websocket.DefaultDialer.Dial(u.String(), http.Header{
		"User-Agent": []string{fmt.Sprintf("basho/%s", versioninfo.Short())},
	})
	if err != nil {
		return fmt.Errorf("dialing stream: %w", err)
	}
	defer con.Close()

	streamDone := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(streamDone)
		err := firehose.HandleStream(ctx, con, pool)
		if err != nil {
			logger.Error("stream handler returned", "err", err)
		}
		cancel()
	}()

	select {
	case <-signals:
		logger.Info("shutting down on signal")
		cancel()
	case <-ctx.Done():
		logger.Info("shutting down on context done")
	}

	// the read loop must stop feeding the pool before the pool closes
	// its queue
	<-streamDone
	pool.Shutdown()

	if err := metricServer.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shut down metrics server", "err", err)
	}

	wg.Wait()
	logger.Info("shut down successfully")

	return nil
}
