package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"plantmap/internal/engine"
)

var warmCacheCmd = &cobra.Command{
	Use:   "warm-cache",
	Short: "Parse the workbook and rewrite the parquet cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfg.Data.Path); err != nil {
			return eris.Wrapf(engine.ErrDataNotFound, "%s", cfg.Data.Path)
		}

		units, missing, err := engine.ParseWorkbook(cfg.Data.Path, cfg.Data.Sheet)
		if err != nil {
			return err
		}
		if err := engine.WriteCache(cfg.Data.CachePath, units, missing); err != nil {
			return err
		}

		zap.L().Info("warm-cache: cache written",
			zap.String("cache", cfg.Data.CachePath),
			zap.Int("units", len(units)),
			zap.Int("missing_columns", len(missing)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(warmCacheCmd)
}
