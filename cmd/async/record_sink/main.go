package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/log4j_xml_reader_service/internal/application"
	"github.com/log4j_xml_reader_service/internal/config"
	"github.com/log4j_xml_reader_service/internal/domain/entity"
	"github.com/log4j_xml_reader_service/internal/infrastructure/kafka"
	"github.com/log4j_xml_reader_service/internal/infrastructure/logger"
	"github.com/log4j_xml_reader_service/internal/infrastructure/metrics"
	"github.com/log4j_xml_reader_service/internal/infrastructure/repository/memory"
	"github.com/log4j_xml_reader_service/internal/infrastructure/repository/mongodb"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	envFile := flag.String("env", ".env", "environment variables file")
	configFile := flag.String("config", "", "YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*envFile, *configFile)
	if err != nil {
		logger.Get(context.Background()).Fatalf("could not load configuration: %v", err)
	}
	logger.Init(cfg.Logging)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logger.Get(ctx)

	if !cfg.UseKafka {
		log.Fatal("record sink needs USE_KAFKA=true")
	}

	consumer, err := kafka.NewKafkaConsumer(cfg.Kafka.BootstrapServer, cfg.Kafka.RecordsTopic, cfg.Kafka.GroupID, log)
	if err != nil {
		log.Fatalf("could not create consumer: %v", err)
	}
	defer consumer.Close()

	repository, closeRepository := initRepository(ctx, cfg, log)
	defer closeRepository()

	processor := application.NewRecordProcessor(cfg.BatchSize, cfg.BatchTimeout, consumer, repository, log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return metrics.Serve(ctx, cfg.MetricsHost, log)
	})
	g.Go(func() error {
		return processor.ProcessRecords(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorw("shutdown with error", "error", err)
	}
	log.Info("initiating graceful shutdown...")
	processor.Close()
}

func initRepository(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (entity.RecordRepository, func()) {
	if cfg.Mongo.URL == "" {
		log.Warn("MONGODB_URL not set, keeping records in memory")
		return memory.NewRecordMemoryRepository(), func() {}
	}

	client, err := mongodb.StartConnection(ctx, cfg.Mongo.URL)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Infow("connected to mongodb", "database", cfg.Mongo.Database)

	repository := mongodb.NewRecordMongoDBRepository(client, cfg.Mongo.Database, cfg.Mongo.Collection)
	if err := repository.EnsureIndexes(ctx); err != nil {
		log.Warnw("could not create indexes", "error", err)
	}
	return repository, func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warnw("mongodb disconnect failed", "error", err)
		}
	}
}
