package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"name_wall/internal/app/service"
	"name_wall/internal/app/state"
	probeclient "name_wall/internal/client"
	"name_wall/internal/infrastructure/configloader"
	clientprovider "name_wall/internal/infrastructure/network/client"
	networkdefinition "name_wall/internal/infrastructure/network/definition"
	"name_wall/internal/infrastructure/restapi"
	"name_wall/internal/infrastructure/walletloader"
	"name_wall/internal/pkg/logger"
	"name_wall/internal/pkg/metrics"
	"name_wall/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "config/config.yml"

func main() {
	// Temporary logger for failures before the configured one exists.
	tempZapLogger, errTempLog := zap.NewDevelopment()
	if errTempLog != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Failed to initialize temporary zapLogger: %v\n", errTempLog)
		os.Exit(1)
	}

	configPath := utils.GetEnv("CONFIG_PATH", defaultConfigPath)
	cfg, err := configloader.Load(configPath)
	if err != nil {
		tempZapLogger.Fatal("Failed to load configuration", zap.String("path", configPath), zap.Error(err))
	}

	zapLogger, err := logger.Setup(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		tempZapLogger.Fatal("Failed to initialize zapLogger", zap.Error(err))
	}
	defer func() { _ = zapLogger.Sync() }()
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Name wall is starting", "config", configPath)
	appLogger := logger.NewSlogAdapter()

	if cfg.Metrics.Enabled {
		metrics.MustRegisterMetrics()
	}

	netDefProvider := networkdefinition.NewNetworkDefinitionProvider(logger.Named("networks"), cfg.Network)
	expected := netDefProvider.ExpectedNetwork()
	for _, def := range netDefProvider.GetAllNetworkDefinitions() {
		logger.Debug("Known network", "name", def.Name, "identifier", def.Identifier, "chain_id", def.ChainID)
	}
	logger.Info("Expected network", "name", expected.Name, "chain_id", expected.ChainID, "rpc_urls", len(expected.RPCURLs()))

	walletProvider := walletloader.NewFileWalletProvider(cfg.Wallet, appLogger.Info)
	clientProvider := clientprovider.NewEVMClientProvider(cfg, netDefProvider, appLogger.Info, appLogger.Error)

	store := state.NewStore(state.AppState{
		ContractAddress: cfg.Contract.Address,
		ExpectedNetwork: expected.Info(),
		Names:           []string{},
	})
	defer store.Close()

	guard := service.NewGuard(walletProvider, clientProvider, netDefProvider, store, logger.Named("guard"), cfg.Contract.Address)
	loadTimeout := time.Duration(cfg.RPCClient.LoadTimeoutSeconds) * time.Second
	reader := service.NewReader(guard, store, logger.Named("reader"), loadTimeout)
	writer := service.NewWriter(guard, reader, store, logger.Named("writer"), time.Duration(cfg.Wallet.ConfirmTimeoutSeconds)*time.Second)
	wallService := service.NewWallService(walletProvider, clientProvider, reader, writer, store, appLogger)

	probe := probeclient.NewRPCProbeClient(
		expected.ChainID,
		time.Duration(cfg.RPCClient.ProbeTimeoutMillis)*time.Millisecond,
		time.Duration(cfg.Cache.ProbeTTLSeconds)*time.Second,
		zapLogger,
	)

	wallHandler := restapi.NewWallHandler(wallService, probe, expected, logger.Named("http"))
	router := restapi.SetupRouter(wallHandler, cfg, zapLogger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Initial load so the first page render already has the names.
	loadCtx, loadCancel := context.WithTimeout(context.Background(), loadTimeout)
	if _, err := wallService.Load(loadCtx); err != nil {
		logger.Warn("Initial wall load failed", "error", err)
	}
	loadCancel()

	go func() {
		logger.Info("Starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start HTTP server", "error", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	<-signalChan

	logger.Info("Shutdown signal received, stopping HTTP server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	} else {
		logger.Info("HTTP server stopped")
	}
	if closer, ok := clientProvider.(interface{ Close() }); ok {
		closer.Close()
	}

	logger.Info("Name wall stopped")
}
