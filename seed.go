package main

import (
	"github.com/dilshat/sms-responder/dao"
	"github.com/dilshat/sms-responder/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Load carriers and market sites from a YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := cfg.SeedFile
		if len(args) == 1 {
			file = args[0]
		}
		return runSeed(file)
	},
}

func runSeed(file string) error {
	f, err := seed.Load(file)
	if err != nil {
		return err
	}

	dbClient, err := dao.GetClient(cfg.DBPath)
	if err != nil {
		return err
	}
	defer dbClient.Close()

	if err = seed.Apply(f, dao.NewSiteDao(dbClient), dao.NewCarrierDao(dbClient)); err != nil {
		return err
	}

	logger.Info("seed applied", zap.String("file", file),
		zap.Int("sites", len(f.Sites)), zap.Int("carriers", len(f.Carriers)))
	return nil
}
