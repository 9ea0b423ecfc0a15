package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pevans/quotescrape/config"
	"github.com/pevans/quotescrape/history"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run ledger over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			store, err := openRunStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			return serve(cmd.Context(), cfg.ServeAddr, history.NewAPIServer(store), opts)
		},
	}

	cmd.Flags().String("addr", config.DefaultServeAddr, "address to listen on")

	return cmd
}

// serve runs the API until ctx is canceled.
func serve(ctx context.Context, addr string, api *history.APIServer, opts *options) error {
	server := &http.Server{
		Addr:    addr,
		Handler: api.SetupRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		opts.logger.Printf("INFO: Starting run history API on http://%s/api/v1/runs", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	opts.logger.Printf("INFO: Shutting down run history API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
