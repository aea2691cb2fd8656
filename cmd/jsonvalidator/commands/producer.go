package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dataquality/jsonvalidator/internal/config"
	"github.com/dataquality/jsonvalidator/internal/logging"
	"github.com/dataquality/jsonvalidator/internal/producer"
)

type producerOptions struct {
	serverAddr string
	logLevel   string
}

// NewProducerCommand creates the producer command: the in-process port of
// the original config-producer-proto binary.
func NewProducerCommand() *cobra.Command {
	opts := &producerOptions{}

	cmd := &cobra.Command{
		Use:   "producer [flags]",
		Short: "Watch a directory of .proto files and upload descriptors to a server",
		Long: `Watches PROTO_SCHEMA_INPUT_DIR for .proto files, compiles each one
in-process, and uploads the resulting FileDescriptorSet to the server's
/load_descriptor endpoint whenever its content changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProducer(opts)
		},
	}

	cmd.Flags().StringVar(&opts.serverAddr, "server-addr", "127.0.0.1:8080", "Address of the running jsonvalidator server")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Log level: error|warn|info|debug|trace")

	return cmd
}

func runProducer(opts *producerOptions) error {
	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	log := logging.New(level)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.ProtoSchemaInputDir == "" {
		return fmt.Errorf("PROTO_SCHEMA_INPUT_DIR must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := producer.New(producer.Config{
		InputDir:   cfg.ProtoSchemaInputDir,
		ServerAddr: opts.serverAddr,
	}, log)

	log.Info().Str("input_dir", cfg.ProtoSchemaInputDir).Str("server", opts.serverAddr).Msg("starting producer")

	err = p.Run(ctx)
	if err != nil && errors.Is(err, context.Canceled) {
		log.Info().Msg("producer shut down")
		return nil
	}
	return err
}
