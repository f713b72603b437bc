package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/zatekoja/providermatch/internal/bootstrap"
	"github.com/zatekoja/providermatch/internal/infrastructure/observability"
	"github.com/zatekoja/providermatch/pkg/config"
)

// cli carries the pipeline built once per invocation
type cli struct {
	app *bootstrap.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "matchctl",
		Short:         "Query the provider registry from the command line",
		Long:          "Runs provider searches, lists registry specialties and geocodes addresses using the same pipeline as the HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

			app, err := bootstrap.Build(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			c.app = app
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}

	root.AddCommand(
		newSearchCmd(c),
		newSpecialtiesCmd(c),
		newGeocodeCmd(c),
	)
	return root
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
