package main

import (
	"context"

	"golang.org/x/sync/errgroup"

	"streamtally/internal/amqp"
	"streamtally/internal/cli"
	"streamtally/internal/config"
	"streamtally/internal/log"
	gsheet "streamtally/internal/sheets/google"
	"streamtally/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting streamtally-worker")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		cli.Fatal(logger, "Worker failed", err)
	}
	logger.Info("Worker shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	mirror, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
		CredentialsFile: cfg.GoogleCredentialsFile,
	}, logger)
	if err != nil {
		return err
	}
	w := worker.NewMirrorWorker(mirror, logger)

	dial := func() (*amqp.Client, error) {
		return amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqp.RunConsumer(gctx, dial, w.HandleActivityAppended, logger)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, draining consumer", log.FieldOperation, log.OpShutdown)
		return nil
	})
	return g.Wait()
}
