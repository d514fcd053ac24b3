package command

import (
	"os"
	"os/signal"
	"syscall"

	"yatube/internal/http-api/server"

	"github.com/spf13/cobra"
)

// serveCmd runs the web site until SIGINT or SIGTERM
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Long:  `Connect to the database and the page cache, apply migrations and serve the site on HTTP_HOST:HTTP_PORT.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appConfig.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.Serve(ctx, appConfig, appLogger)
	},
}
