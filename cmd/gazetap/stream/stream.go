// Package streamcmder provides the stream command, which connects to the
// iMotions API and prints normalized gaze samples on standard output.
package streamcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/gazetap/api"
	"github.com/papercomputeco/gazetap/pkg/cliui"
	"github.com/papercomputeco/gazetap/pkg/config"
	"github.com/papercomputeco/gazetap/pkg/display"
	"github.com/papercomputeco/gazetap/pkg/eventstream"
	"github.com/papercomputeco/gazetap/pkg/eventstream/kafka"
	"github.com/papercomputeco/gazetap/pkg/eventstream/nop"
	"github.com/papercomputeco/gazetap/pkg/imotions"
	"github.com/papercomputeco/gazetap/pkg/logger"
	"github.com/papercomputeco/gazetap/pkg/metrics"
	"github.com/papercomputeco/gazetap/pkg/session"
	"github.com/papercomputeco/gazetap/pkg/storage"
	"github.com/papercomputeco/gazetap/pkg/storage/inmemory"
	"github.com/papercomputeco/gazetap/pkg/storage/postgres"
	"github.com/papercomputeco/gazetap/pkg/storage/sqlite"
	"github.com/papercomputeco/gazetap/pkg/transport"
	"github.com/papercomputeco/gazetap/pkg/worker"
)

type streamCommander struct {
	host       string
	port       uint
	deviceName string
	sampleName string
	width      uint
	height     uint

	sqlitePath  string
	postgresDSN string

	kafkaBrokers string
	kafkaTopic   string

	apiListen string
	workers   uint
	queueSize uint

	debug   bool
	logJSON bool
	logFile string

	dialTimeout time.Duration

	logger *slog.Logger
}

const streamLongDesc string = `Stream eye-tracking samples from the iMotions API.

gazetap connects to the iMotions TCP forwarding port, frames the stream into
newline-delimited JSON records and keeps the EyeData samples. Each sample is
printed on standard output as:

  {ts}; lx, ly, lvalid, lpupil, lpupilvalid; rx, ry, rvalid, rpupil, rpupilvalid

Gaze coordinates are normalized to the screen and -1 marks an invalid reading.
The screen size is queried from xrandr unless --width and --height are given.

Emitted samples are also recorded to in-memory storage (or SQLite/PostgreSQL
when configured), optionally published to Kafka, and served by the status API
when --api-listen is set. The command exits when the server closes the stream
or on SIGINT/SIGTERM.`

const streamShortDesc string = "Stream normalized gaze samples from iMotions"

func NewStreamCmd() *cobra.Command {
	cmder := &streamCommander{}

	cmd := &cobra.Command{
		Use:   "stream",
		Short: streamShortDesc,
		Long:  streamLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.StreamFlags, config.StreamFlagKeys)

			cmder.host = v.GetString("imotions.host")
			cmder.port = v.GetUint("imotions.port")
			cmder.deviceName = v.GetString("filter.device_name")
			cmder.sampleName = v.GetString("filter.sample_name")
			cmder.width = v.GetUint("display.width")
			cmder.height = v.GetUint("display.height")
			cmder.sqlitePath = v.GetString("storage.sqlite_path")
			cmder.postgresDSN = v.GetString("storage.postgres_dsn")
			cmder.kafkaBrokers = v.GetString("eventstream.kafka_brokers")
			cmder.kafkaTopic = v.GetString("eventstream.kafka_topic")
			cmder.apiListen = v.GetString("api.listen")
			cmder.workers = v.GetUint("recorder.workers")
			cmder.queueSize = v.GetUint("recorder.queue_size")

			if cmder.port > 65535 {
				return fmt.Errorf("invalid port %d", cmder.port)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.logJSON, err = cmd.Flags().GetBool("log-json")
			if err != nil {
				return fmt.Errorf("could not get log-json flag: %w", err)
			}

			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.StreamFlags, config.FlagHost, &cmder.host)
	config.AddUintFlag(cmd, config.StreamFlags, config.FlagPort, &cmder.port)
	config.AddStringFlag(cmd, config.StreamFlags, config.FlagDeviceName, &cmder.deviceName)
	config.AddStringFlag(cmd, config.StreamFlags, config.FlagSampleName, &cmder.sampleName)
	config.AddUintFlag(cmd, config.StreamFlags, config.FlagWidth, &cmder.width)
	config.AddUintFlag(cmd, config.StreamFlags, config.FlagHeight, &cmder.height)
	config.AddStringFlag(cmd, config.StreamFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.StreamFlags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.StreamFlags, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, config.StreamFlags, config.FlagKafkaTopic, &cmder.kafkaTopic)
	config.AddStringFlag(cmd, config.StreamFlags, config.FlagAPIListen, &cmder.apiListen)
	config.AddUintFlag(cmd, config.StreamFlags, config.FlagWorkers, &cmder.workers)
	config.AddUintFlag(cmd, config.StreamFlags, config.FlagQueueSize, &cmder.queueSize)

	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")
	cmd.Flags().DurationVar(&cmder.dialTimeout, "dial-timeout", 10*time.Second, "Timeout for connecting to the iMotions API")

	return cmd
}

func (c *streamCommander) run(cmd *cobra.Command) error {
	stderr := cmd.ErrOrStderr()
	interactive := !c.logJSON && isTerminal(stderr)

	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(c.logJSON),
		logger.WithPretty(interactive),
		logger.WithWriter(stderr),
	)

	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		c.logger = logger.Multi(c.logger, logger.New(
			logger.WithDebug(c.debug),
			logger.WithJSON(true),
			logger.WithWriter(f),
		))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	screen, err := display.New(int(c.width), int(c.height)).Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolving screen size: %w", err)
	}

	driver, err := c.newStorageDriver(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	opts := transport.Options{
		Host:        c.host,
		Port:        int(c.port),
		DialTimeout: c.dialTimeout,
	}

	m := metrics.New()

	// Declared after the driver and publisher so it drains before they close.
	pool, err := worker.NewPool(&worker.Config{
		Driver:     driver,
		Publisher:  publisher,
		Upstream:   opts.Addr(),
		NumWorkers: c.workers,
		QueueSize:  c.queueSize,
		Logger:     c.logger,
	})
	if err != nil {
		return fmt.Errorf("starting recorder: %w", err)
	}
	defer pool.Close()

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()

	sess := session.New(session.Config{
		Screen: screen,
		Filter: imotions.Filter{
			DeviceName: c.deviceName,
			SampleName: c.sampleName,
		},
		Logger:   c.logger,
		Metrics:  m,
		Recorder: pool,
	}, out)

	if c.apiListen != "" {
		server := api.NewServer(api.Config{ListenAddr: c.apiListen}, driver, sess, m, c.logger)
		go func() {
			if err := server.Run(); err != nil {
				c.logger.Error("API server stopped", "error", err)
			}
		}()
		defer func() {
			if err := server.Shutdown(); err != nil {
				c.logger.Warn("API server shutdown failed", "error", err)
			}
		}()
	}

	conn, err := c.dial(ctx, stderr, interactive, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("connecting to iMotions: %w", err)
	}
	defer conn.Close()

	c.logger.Info("connected to iMotions", "addr", conn.RemoteAddr(), "session_id", sess.ID())

	return sess.Run(ctx, conn)
}

func (c *streamCommander) dial(ctx context.Context, w io.Writer, interactive bool, opts transport.Options) (*transport.Conn, error) {
	if !interactive {
		c.logger.Info("connecting to iMotions", "addr", opts.Addr())
		return transport.Dial(ctx, opts)
	}

	var conn *transport.Conn
	err := cliui.Step(w, "Connecting to "+opts.Addr(), func() error {
		var err error
		conn, err = transport.Dial(ctx, opts)
		return err
	})
	return conn, err
}

func (c *streamCommander) newStorageDriver(ctx context.Context) (storage.Driver, error) {
	if c.postgresDSN != "" {
		driver, err := postgres.NewDriver(ctx, c.postgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL storer: %w", err)
		}
		c.logger.Info("using PostgreSQL storage")
		return driver, nil
	}

	if c.sqlitePath != "" {
		driver, err := sqlite.NewDriver(ctx, c.sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storer: %w", err)
		}
		c.logger.Info("using SQLite storage", "path", c.sqlitePath)
		return driver, nil
	}

	c.logger.Debug("using in-memory storage", "capacity", inmemory.DefaultCapacity)
	return inmemory.NewDriver(inmemory.DefaultCapacity), nil
}

func (c *streamCommander) newPublisher() (eventstream.Publisher, error) {
	brokers := splitBrokers(c.kafkaBrokers)
	if len(brokers) == 0 {
		return nop.NewPublisher(), nil
	}

	publisher, err := kafka.NewPublisher(kafka.Config{
		Brokers: brokers,
		Topic:   c.kafkaTopic,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka publisher: %w", err)
	}

	c.logger.Info("publishing samples to kafka", "brokers", brokers, "topic", c.kafkaTopic)
	return publisher, nil
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && logger.IsTerminal(f)
}
