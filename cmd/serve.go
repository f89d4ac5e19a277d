package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/takak2166/teum/internal/logger"
	"github.com/takak2166/teum/internal/server"
)

func init() {
	var port string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Notion proxy and entries API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.session.Open(ctx)
			done := a.session.Start(ctx)
			go func() {
				if err := <-done; err != nil && ctx.Err() == nil {
					logger.Warn("Initial refresh failed, serving cached entries", err)
				}
			}()

			if port == "" {
				port = a.cfg.Port
			}
			srv := server.New(a.source, a.session, a.likes)
			return srv.ListenAndServe(ctx, ":"+port)
		},
	}
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (default PORT)")
	rootCmd.AddCommand(serveCmd)
}
