// Package app wires the Chalith component runtime: broker client,
// message archive, epoch processor, and health endpoint.
package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/simcesplatform/chalith-component/internal/bus"
	"github.com/simcesplatform/chalith-component/internal/bus/rabbitmq"
	"github.com/simcesplatform/chalith-component/internal/component"
	"github.com/simcesplatform/chalith-component/internal/messages"
	chalithdomain "github.com/simcesplatform/chalith-component/internal/services/chalith/domain"
	chalithsqlite "github.com/simcesplatform/chalith-component/internal/services/chalith/storage/sqlite"
)

// RuntimeConfig controls component startup, dependencies, and topics.
type RuntimeConfig struct {
	SimulationID  string
	ComponentName string

	StateTopic  string
	EpochTopic  string
	StatusTopic string
	ErrorTopic  string

	BrokerHost     string
	BrokerPort     int
	BrokerUsername string
	BrokerPassword string
	BrokerExchange string
	BrokerTLS      bool

	ChalithValue    string
	InputComponents []string
	TopicBase       string

	ArchiveDBPath string
	HealthPort    int
}

const defaultHealthPort = 8089

// Run starts the Chalith component and blocks until the simulation stops
// or the context ends.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(cfg.SimulationID) == "" {
		return fmt.Errorf("simulation id is required")
	}
	if strings.TrimSpace(cfg.ComponentName) == "" {
		return fmt.Errorf("component name is required")
	}
	if cfg.HealthPort <= 0 {
		cfg.HealthPort = defaultHealthPort
	}

	var messageBus bus.Bus

	client, err := rabbitmq.Dial(ctx, rabbitmq.Config{
		Host:     cfg.BrokerHost,
		Port:     cfg.BrokerPort,
		Username: cfg.BrokerUsername,
		Password: cfg.BrokerPassword,
		Exchange: cfg.BrokerExchange,
		UseTLS:   cfg.BrokerTLS,
	})
	if err != nil {
		return fmt.Errorf("connect message bus: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			log.Printf("close message bus: %v", closeErr)
		}
	}()
	messageBus = client

	if strings.TrimSpace(cfg.ArchiveDBPath) != "" {
		if dir := filepath.Dir(cfg.ArchiveDBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create archive storage dir: %w", err)
			}
		}
		archiveStore, err := chalithsqlite.Open(cfg.ArchiveDBPath)
		if err != nil {
			return fmt.Errorf("open message archive: %w", err)
		}
		defer func() {
			if closeErr := archiveStore.Close(); closeErr != nil {
				log.Printf("close message archive: %v", closeErr)
			}
		}()
		messageBus = newArchivingBus(messageBus, archiveStore)
	}

	generator, err := messages.NewGenerator(cfg.SimulationID, cfg.ComponentName)
	if err != nil {
		return fmt.Errorf("create message generator: %w", err)
	}

	processor, err := chalithdomain.NewProcessor(messageBus, generator, chalithdomain.ProcessorConfig{
		ComponentName:   cfg.ComponentName,
		OwnValue:        cfg.ChalithValue,
		InputComponents: cfg.InputComponents,
		TopicBase:       cfg.TopicBase,
	})
	if err != nil {
		return fmt.Errorf("create chalith processor: %w", err)
	}

	runtime, err := component.New(component.Config{
		SimulationID: cfg.SimulationID,
		Name:         cfg.ComponentName,
		StateTopic:   cfg.StateTopic,
		EpochTopic:   cfg.EpochTopic,
		StatusTopic:  cfg.StatusTopic,
		ErrorTopic:   cfg.ErrorTopic,
	}, messageBus, generator, processor)
	if err != nil {
		return fmt.Errorf("create component runtime: %w", err)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.HealthPort))
	if err != nil {
		return fmt.Errorf("listen on health port %d: %w", cfg.HealthPort, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("chalith.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Printf("health server listening at %v", listener.Addr())

	var group errgroup.Group
	group.Go(func() error {
		defer cancel()
		return runtime.Run(runCtx)
	})
	group.Go(func() error {
		<-runCtx.Done()
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		return nil
	})
	group.Go(func() error {
		if err := grpcServer.Serve(listener); err != nil {
			return fmt.Errorf("serve health endpoint: %w", err)
		}
		return nil
	})
	return group.Wait()
}
