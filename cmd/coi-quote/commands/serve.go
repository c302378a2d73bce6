package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/coi-quote/internal/server"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC QuoteService",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if addr == "" {
				addr = appCtx.cfg.Server.GRPCAddr
			}
			db, quotes, err := appCtx.openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := server.NewQuoteServer(appCtx.proc, quotes, appCtx.logger)
			gs, hs := server.NewGRPCServer(svc, appCtx.logger)
			return server.Serve(ctx, addr, gs, hs, appCtx.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $GRPC_ADDR)")
	return cmd
}
