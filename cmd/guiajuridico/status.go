package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xela07ax/guia-juridico-web/internal/domain"
)

var statusFlags struct {
	opening  string
	closing  string
	now      string
	timezone string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Prints the status derived from opening and closing dates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		loc, err := time.LoadLocation(statusFlags.timezone)
		if err != nil {
			return fmt.Errorf("timezone: %w", err)
		}
		opening, err := domain.ParseDate(statusFlags.opening, loc)
		if err != nil {
			return fmt.Errorf("--abertura: %w", err)
		}
		closing, err := domain.ParseDate(statusFlags.closing, loc)
		if err != nil {
			return fmt.Errorf("--encerramento: %w", err)
		}
		now := time.Now().In(loc)
		if statusFlags.now != "" {
			if now, err = domain.ParseDate(statusFlags.now, loc); err != nil {
				return fmt.Errorf("--agora: %w", err)
			}
		}

		status := domain.DeriveStatus(opening, closing, now)
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", status, status.Label())
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusFlags.opening, "abertura", "", "opening date, YYYY-MM-DD")
	statusCmd.Flags().StringVar(&statusFlags.closing, "encerramento", "", "closing date, YYYY-MM-DD")
	statusCmd.Flags().StringVar(&statusFlags.now, "agora", "", "reference time, defaults to now")
	statusCmd.Flags().StringVar(&statusFlags.timezone, "tz", "America/Sao_Paulo", "timezone of the dates")
	rootCmd.AddCommand(statusCmd)
}
