package cli

import (
	"github.com/spf13/cobra"

	"github.com/abaddouh/fakeimg/internal/server"
	"github.com/abaddouh/fakeimg/internal/synth"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve placeholder images over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == 0 {
				port = a.cfg.Server.Port
			}

			local, err := synth.NewLocal(a.cfg.Local)
			if err != nil {
				return err
			}

			srv := server.New(port, a.cfg.Server.MaxDimension, local, a.logger)
			return srv.Start(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to serve placeholders on (default from config)")

	return cmd
}
