/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetConfirm string

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop all data and recreate the schema",
	Long: `Drops every table and recreates the schema. The --confirm flag must
repeat the configured database target, for example:

	recipebook reset --confirm ./ptyxes.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cfg, logger, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer eng.Close()

		if target := cfg.Database.Target(); resetConfirm != target {
			return fmt.Errorf("refusing to reset %s: pass --confirm %s", target, target)
		}

		if err := eng.Reset(cmd.Context()); err != nil {
			return err
		}
		logger.Info("reset complete", "target", cfg.Database.Target())
		fmt.Fprintf(cmd.OutOrStdout(), "reset %s\n", cfg.Database.Target())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().StringVar(&resetConfirm, "confirm", "", "database target to reset")
}
