package guard

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"

	api "github.com/oshokin/door-guard/internal/api/grpc/status"
	"github.com/oshokin/door-guard/internal/config"
	"github.com/oshokin/door-guard/internal/device"
	"github.com/oshokin/door-guard/internal/device/sim"
	"github.com/oshokin/door-guard/internal/logger"
	"github.com/oshokin/door-guard/internal/notify"
	"github.com/oshokin/door-guard/internal/repository/status"
	"github.com/oshokin/door-guard/internal/version"
)

// Options controls the door-guard process.
type Options struct {
	// ConfigPath is the settings file; empty reads the default file if present.
	ConfigPath string
	// ScenarioPath overrides the sim scenario from the settings.
	ScenarioPath string
	// StatusAddress overrides the status service listen address.
	StatusAddress string
}

// Run loads settings and drives the device until ctx is cancelled.
// Configuration problems and actuator faults are returned; everything else is logged.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "door-guard")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	if opts.ScenarioPath != "" {
		cfg.Device.Scenario = opts.ScenarioPath
	}

	if opts.StatusAddress != "" {
		cfg.StatusAddress = opts.StatusAddress
	}

	if err := ensureSingleInstance(); err != nil {
		return err
	}

	devices, err := openDevices(cfg)
	if err != nil {
		return fmt.Errorf("open devices: %w", err)
	}

	notifier, err := notify.NewTelegram(
		cfg.BotToken,
		cfg.ChatID,
		notify.WithAPIURL(cfg.TelegramAPIURL),
		notify.WithTimeout(cfg.NotifyTimeout),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}

	repo := status.NewMemoryRepository()

	if cfg.StatusAddress != "" {
		stop, err := serveStatus(ctx, cfg.StatusAddress, repo)
		if err != nil {
			return err
		}

		defer stop()
	}

	logger.InfoKV(
		ctx,
		"Door guard started",
		"version", version.Short(),
		"wifi_ssid", cfg.WiFiSSID,
		"identities", len(cfg.Identities),
		"backend", cfg.Device.Backend,
		"poll_interval", cfg.PollInterval,
	)

	return NewDevice(cfg, devices, notifier, repo).Run(ctx)
}

// openDevices builds the configured peripheral backend.
func openDevices(cfg *config.Config) (device.Set, error) {
	switch cfg.Device.Backend {
	case config.BackendSim:
		var scenario *sim.Scenario

		if cfg.Device.Scenario != "" {
			loaded, err := sim.LoadScenario(cfg.Device.Scenario)
			if err != nil {
				return device.Set{}, err
			}

			scenario = loaded
		}

		return sim.New(scenario).Set(), nil
	default:
		return device.Set{}, fmt.Errorf("%w: unsupported device backend %q", config.ErrConfiguration, cfg.Device.Backend)
	}
}

// serveStatus starts the gRPC status service and returns a function that stops it.
func serveStatus(ctx context.Context, address string, repo status.Repository) (func(), error) {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	grpcServer := grpc.NewServer()
	api.RegisterStatusServiceServer(grpcServer, api.NewServer(repo))

	logger.InfoKV(ctx, "Status service listening", "listen_address", lis.Addr().String())

	done := make(chan struct{})

	go func() {
		defer close(done)

		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.ErrorKV(ctx, "Status service stopped", "error", err)
		}
	}()

	return func() {
		grpcServer.GracefulStop()
		<-done
		logger.Info(ctx, "Status service stopped")
	}, nil
}
