// Package chalith parses Chalith component flags and launches the
// component runtime.
package chalith

import (
	"context"
	"flag"

	entrypoint "github.com/simcesplatform/chalith-component/internal/platform/cmd"
	"github.com/simcesplatform/chalith-component/internal/services/chalith/app"
	"github.com/simcesplatform/chalith-component/internal/services/chalith/domain"
)

// Config holds Chalith component configuration.
type Config struct {
	SimulationID  string `env:"SIMULATION_ID"`
	ComponentName string `env:"SIMULATION_COMPONENT_NAME" envDefault:"chalith"`

	StateTopic  string `env:"SIMULATION_STATE_MESSAGE_TOPIC" envDefault:"SimState"`
	EpochTopic  string `env:"SIMULATION_EPOCH_MESSAGE_TOPIC" envDefault:"Epoch"`
	StatusTopic string `env:"SIMULATION_STATUS_MESSAGE_TOPIC" envDefault:"Status.Ready"`
	ErrorTopic  string `env:"SIMULATION_ERROR_MESSAGE_TOPIC" envDefault:"Status.Error"`

	BrokerHost     string `env:"RABBITMQ_HOST" envDefault:"localhost"`
	BrokerPort     int    `env:"RABBITMQ_PORT" envDefault:"5672"`
	BrokerUsername string `env:"RABBITMQ_LOGIN"`
	BrokerPassword string `env:"RABBITMQ_PASSWORD"`
	BrokerExchange string `env:"RABBITMQ_EXCHANGE" envDefault:"procemplus"`
	BrokerTLS      bool   `env:"RABBITMQ_SSL" envDefault:"false"`

	ChalithValue    string `env:"CHALITH_VALUE" envDefault:"test"`
	InputComponents string `env:"INPUT_COMPONENTS"`
	TopicBase       string `env:"CHALITH_TOPIC" envDefault:"ChalithTopic"`

	ArchiveDBPath string `env:"CHALITH_ARCHIVE_DB_PATH"`
	HealthPort    int    `env:"CHALITH_HEALTH_PORT" envDefault:"8089"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.SimulationID, "simulation-id", cfg.SimulationID, "The simulation run identifier")
	fs.StringVar(&cfg.ComponentName, "component-name", cfg.ComponentName, "This component's process name")
	fs.StringVar(&cfg.StateTopic, "state-topic", cfg.StateTopic, "The simulation state topic")
	fs.StringVar(&cfg.EpochTopic, "epoch-topic", cfg.EpochTopic, "The epoch topic")
	fs.StringVar(&cfg.StatusTopic, "status-topic", cfg.StatusTopic, "The ready status topic")
	fs.StringVar(&cfg.ErrorTopic, "error-topic", cfg.ErrorTopic, "The error status topic")
	fs.StringVar(&cfg.BrokerHost, "broker-host", cfg.BrokerHost, "The RabbitMQ host")
	fs.IntVar(&cfg.BrokerPort, "broker-port", cfg.BrokerPort, "The RabbitMQ port")
	fs.StringVar(&cfg.BrokerExchange, "broker-exchange", cfg.BrokerExchange, "The RabbitMQ topic exchange")
	fs.BoolVar(&cfg.BrokerTLS, "broker-tls", cfg.BrokerTLS, "Connect to the broker over TLS")
	fs.StringVar(&cfg.ChalithValue, "chalith-value", cfg.ChalithValue, "The value appended each epoch")
	fs.StringVar(&cfg.InputComponents, "input-components", cfg.InputComponents, "Comma-separated input component names")
	fs.StringVar(&cfg.TopicBase, "chalith-topic", cfg.TopicBase, "The Chalith topic base")
	fs.StringVar(&cfg.ArchiveDBPath, "archive-db-path", cfg.ArchiveDBPath, "The message archive SQLite path (empty disables archiving)")
	fs.IntVar(&cfg.HealthPort, "health-port", cfg.HealthPort, "The gRPC health server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the Chalith component runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceChalith, func(context.Context) error {
		return app.Run(ctx, app.RuntimeConfig{
			SimulationID:    cfg.SimulationID,
			ComponentName:   cfg.ComponentName,
			StateTopic:      cfg.StateTopic,
			EpochTopic:      cfg.EpochTopic,
			StatusTopic:     cfg.StatusTopic,
			ErrorTopic:      cfg.ErrorTopic,
			BrokerHost:      cfg.BrokerHost,
			BrokerPort:      cfg.BrokerPort,
			BrokerUsername:  cfg.BrokerUsername,
			BrokerPassword:  cfg.BrokerPassword,
			BrokerExchange:  cfg.BrokerExchange,
			BrokerTLS:       cfg.BrokerTLS,
			ChalithValue:    cfg.ChalithValue,
			InputComponents: domain.ParseInputComponents(cfg.InputComponents),
			TopicBase:       cfg.TopicBase,
			ArchiveDBPath:   cfg.ArchiveDBPath,
			HealthPort:      cfg.HealthPort,
		})
	})
}
