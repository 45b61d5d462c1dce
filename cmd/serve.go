package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cfaprep/cfaprep/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local question bank and progress over HTTP",
	Long: "serve exposes the local bank and store as a progress service, so other\n" +
		"cfaprep clients can use it with --server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Offline() {
			return fmt.Errorf("serve runs on the local backend; unset --server")
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTPAddr = addr
		}

		ctx := cmd.Context()
		d := &deps{logger: cfg.NewLogger(os.Stderr)}
		defer d.Close()
		if err := openService(ctx, d); err != nil {
			return err
		}

		handler := httpapi.NewRouter(d.service, httpapi.Options{
			CORSOrigins: cfg.CORSOrigins,
			Token:       cfg.Token,
			Timeout:     cfg.Timeout,
		}, d.logger)
		return httpapi.Serve(ctx, cfg.HTTPAddr, handler, d.logger)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides CFAPREP_HTTP_ADDR)")
}
