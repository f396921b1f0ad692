package main

import (
	"fmt"
	"os"

	"github.com/dilshat/sms-responder/config"
	_ "github.com/dilshat/sms-responder/docs"
	"github.com/dilshat/sms-responder/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// @title Sms responder HTTP API
// @description Gateway webhooks of the coupon alerts sms responder

// @contact.name Dilshat Aliev
// @contact.email dilshat.aliev@gmail.com

var (
	envFile string
	cfg     config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sms-responder",
	Short: "Answers mobile originated SMS on behalf of the coupon alerts program",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
		cfg = config.Load()

		var err error
		logger, err = log.New(cfg.Debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "environment file")
	rootCmd.AddCommand(serveCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
