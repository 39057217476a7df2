package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xela07ax/guia-juridico-web/internal/infra"
)

var rootCmd = &cobra.Command{
	Use:   "guiajuridico",
	Short: "Guia Jurídico web front-end",
	Long: `Server-rendered front-end for the Guia Jurídico opportunities catalog.

	guiajuridico serve
	guiajuridico listings --tipo "Estágio"
	guiajuridico status --abertura 2024-05-01 --encerramento 2024-05-31
`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap — общая для команд загрузка конфига и логгера
func bootstrap() (*infra.Config, *zap.Logger, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
