// cmd/balancete/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"balancete-service/internal/api/handlers"
	"balancete-service/internal/api/responses"
	"balancete-service/internal/config"
	"balancete-service/internal/core/balancete"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "balancete-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuração inválida: %v", err)
	}

	logger, err := responses.InitLogger(cfg.LogLevel, cfg.DevMode)
	if err != nil {
		log.Fatalf("Falha ao iniciar logger: %v", err)
	}
	defer logger.Sync()

	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	balanceteService, err := balancete.NewService(logger, balancete.Options{
		Encoding: cfg.InputEncoding,
		Workers:  cfg.BatchWorkers,
	})
	if err != nil {
		logger.Fatal("Falha ao criar serviço de balancetes", zap.Error(err))
	}

	shutdown := handlers.NewShutdown()
	router := handlers.NewRouter(
		handlers.NewBalanceteHandler(balanceteService, cfg.OutputDir, cfg.MaxUploadBytes),
		handlers.NewSystemHandler(serviceName, shutdown),
	)

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigs:
			logger.Info("Sinal recebido, finalizando servidor", zap.String("signal", sig.String()))
			shutdown.Trigger()
		case <-shutdown.Done():
			logger.Info("Encerramento solicitado via HTTP")
		}
	}()

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		logger.Fatal("Falha ao iniciar o servidor de balancetes", zap.Error(err))
	}

	logger.Info("🚀 Balancete Service (Go) iniciado",
		zap.String("addr", cfg.Addr()),
		zap.String("encoding", cfg.InputEncoding),
		zap.Int("workers", cfg.BatchWorkers))
	if err := run(srv, ln, shutdown, cfg.ShutdownTimeout, logger); err != nil {
		logger.Fatal("Servidor finalizado com erro", zap.Error(err))
	}
	logger.Info("Servidor finalizado")
}

// run serve em ln até o encerramento ser solicitado e só retorna depois que
// as requisições em andamento terminarem ou o prazo expirar.
func run(srv *http.Server, ln net.Listener, shutdown *handlers.Shutdown, timeout time.Duration, logger *zap.Logger) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-shutdown.Done():
	}

	logger.Info("Aguardando requisições em andamento", zap.Duration("timeout", timeout))
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("encerramento gracioso interrompido: %w", err)
	}

	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
