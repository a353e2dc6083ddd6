package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ingestor/internal/gatherer"
	"github.com/KaramelBytes/ingestor/internal/service"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ingestor service until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer logger.Sync()
		logger.Info("Logging level: " + logger.Level().CapitalString())

		svc := service.New(c, gatherer.New(logger), logger)
		svc.Initialise()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		runErr := make(chan error, 1)
		go func() { runErr <- svc.Run(context.WithoutCancel(ctx)) }()

		select {
		case err := <-runErr:
			return err
		case <-ctx.Done():
			svc.Stop()
			return <-runErr
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
