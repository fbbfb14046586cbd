package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bookgenre/feedback"
	qhttp "bookgenre/http"
)

func newServeCmd(configPath *string) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the survey web server",
		Example: `  bookgenre serve
  bookgenre serve --config /etc/bookgenre/config.yaml --port 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath, port)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

func runServe(configPath string, port int) error {
	// 1. Load config, logger and artifacts
	e, err := setup(configPath)
	if err != nil {
		return err
	}
	logger := e.logger
	defer logger.Sync()

	if port > 0 {
		e.cfg.HTTP.Port = port
	}

	// 2. Build the prediction pipeline and feedback log
	predictor, err := e.predictor()
	if err != nil {
		return err
	}
	recorder := feedback.NewCSVLog(e.cfg.Feedback.Path, e.artifacts.Schema.Fields, logger)

	handler, err := qhttp.NewHandler(qhttp.Options{
		Predictor:     predictor,
		Recorder:      recorder,
		Logger:        logger,
		AnalysisDelay: e.cfg.UI.AnalysisDelay,
	})
	if err != nil {
		return err
	}

	// 3. Start HTTP server
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:         e.cfg.HTTP.Port,
		Timeout:      e.cfg.HTTP.Timeout,
		MaxBodyBytes: e.cfg.HTTP.MaxBodyBytes,
	}, handler, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	logger.Info("survey ready",
		zap.String("addr", server.Addr()),
		zap.String("feedback_log", recorder.Path()),
	)

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}
	logger.Info("exiting")
	return nil
}
