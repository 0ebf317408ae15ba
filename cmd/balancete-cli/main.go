// cmd/balancete-cli/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"balancete-service/internal/api/responses"
	"balancete-service/internal/config"
	"balancete-service/internal/core/balancete"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errArquivosComFalha = errors.New("um ou mais arquivos falharam")

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "balancete-cli",
		Short:        "Converte balancetes analíticos (.txt) em planilhas",
		SilenceUsage: true,
	}
	root.AddCommand(newProcessCmd(out))
	return root
}

func newProcessCmd(out io.Writer) *cobra.Command {
	var (
		outputDir string
		workers   int
		encoding  string
	)

	cmd := &cobra.Command{
		Use:   "process <arquivo.txt|pasta>",
		Short: "Processa um arquivo ou todos os .txt de uma pasta",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("out") {
				outputDir = cfg.OutputDir
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.BatchWorkers
			}
			if !cmd.Flags().Changed("encoding") {
				encoding = cfg.InputEncoding
			}

			logger, err := responses.InitLogger(cfg.LogLevel, cfg.DevMode)
			if err != nil {
				return err
			}
			defer logger.Sync()

			svc, err := balancete.NewService(logger, balancete.Options{Encoding: encoding, Workers: workers})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runProcess(ctx, out, svc, logger, args[0], outputDir)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "pasta de destino das planilhas")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "arquivos processados em paralelo")
	cmd.Flags().StringVar(&encoding, "encoding", balancete.EncodingUTF8, "codificação de entrada (utf-8, latin1, auto)")
	return cmd
}

func runProcess(ctx context.Context, out io.Writer, svc balancete.Service, logger *zap.Logger, inputPath, outputDir string) error {
	result, err := svc.ProcessPath(ctx, inputPath, outputDir)
	if err != nil {
		return err
	}

	for _, f := range result.ProcessedFiles {
		fmt.Fprintf(out, "Arquivo processado: %s\n", f.OutputFile)
	}
	for _, e := range result.Errors {
		fmt.Fprintln(out, e)
	}
	logger.Debug("Resumo do lote", zap.String("batch_id", result.BatchID), zap.Int("processed", result.ProcessedCount))

	if len(result.Errors) > 0 {
		return fmt.Errorf("%w: %d de %d", errArquivosComFalha, len(result.Errors), len(result.Errors)+result.ProcessedCount)
	}
	return nil
}
