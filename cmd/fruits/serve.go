// Serve command runs the HTTP server.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/fruits/internal/web"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the fruits pages over HTTP",
	Long: `Serve attaches the configured record store and serves the fruits
resource until interrupted (SIGINT or SIGTERM).

Routes:
  GET    /fruits            list
  GET    /fruits/new        new-fruit form
  GET    /fruits/{id}       show
  GET    /fruits/{id}/edit  edit form
  POST   /fruits            create
  PUT    /fruits/{id}       update (or POST with _method=PUT)
  DELETE /fruits/{id}       delete (or POST with _method=DELETE)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cup, _, err := openFruits(ctx)
		if err != nil {
			return err
		}
		defer detach(cup)

		opts := serverOptions(cfg, flagListen)
		srv, err := web.NewServer(cup, opts, logger)
		if err != nil {
			return err
		}
		logger.Info("serving fruits",
			zap.String("backend", cfg.GetString(cfgKeyBackend)),
			zap.String("addr", opts.Addr),
		)
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "listen address (default from config, :3000)")
}
