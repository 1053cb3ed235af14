package cmd

import (
	"context"

	"safescan/internal/handler"
	"safescan/internal/server"
	"safescan/internal/session"
	"safescan/pkg/config"
	"safescan/pkg/logger"
	"safescan/pkg/provider"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scanner panel HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		config.Init()

		logger.Init(config.Global.App.Env)
		defer logger.Sync()

		if port, _ := cmd.Flags().GetString("port"); port != "" {
			config.Global.App.HttpPort = port
		}

		var p provider.Provider
		if url := config.Global.Wallet.ProviderURL; url != "" {
			rp, err := provider.Dial(context.Background(), url)
			if err != nil {
				logger.Error("wallet provider unavailable", zap.String("url", url), zap.Error(err))
			} else {
				defer rp.Close()
				p = rp
				logger.Info("wallet provider configured", zap.String("url", url))
			}
		} else {
			logger.Warn("no wallet provider configured, connect will fail")
		}

		sc := config.Global.Scanner
		sess := session.New(p,
			session.Stats{Scanned: sc.SeedScanned, Compromised: sc.SeedCompromised, Safe: sc.SeedSafe},
			session.WithPollInterval(config.Global.Wallet.ReceiptPollInterval),
		)

		scanner := handler.NewScannerHandler(sess, config.Global.Wallet.ApprovalTimeout)
		r := server.NewHTTPRouter(scanner)

		server.New(server.Config{HttpPort: config.Global.App.HttpPort}, r).Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "HTTP port (overrides app.http_port)")
}
