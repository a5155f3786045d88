package cmd

import (
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"agentic_ad_copy/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Start the web form",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			llm, err := root.buildLLM(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			srv, err := server.New(llm, cfg.RequestTimeout())
			if err != nil {
				return err
			}
			listen := cfg.ServerAddr
			if addr != "" {
				listen = addr
			}
			slog.Info("Starting web server", "addr", listen, "provider", cfg.LLM.Provider)
			return http.ListenAndServe(listen, srv.Routes())
		},
	}
	c.Flags().StringVar(&addr, "addr", "", "http listen address (overrides config server_addr)")
	return c
}
