package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/log4j_xml_reader_service/internal/application"
	"github.com/log4j_xml_reader_service/internal/config"
	"github.com/log4j_xml_reader_service/internal/domain/entity"
	"github.com/log4j_xml_reader_service/internal/infrastructure/kafka"
	"github.com/log4j_xml_reader_service/internal/infrastructure/logger"
	"github.com/log4j_xml_reader_service/internal/infrastructure/memory"
	"go.uber.org/zap"
)

var errNoSources = errors.New("no sources configured, set LOG4J_SOURCES")

func main() {
	envFile := flag.String("env", ".env", "environment variables file")
	configFile := flag.String("config", "", "YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*envFile, *configFile)
	if err != nil {
		logger.Get(context.Background()).Fatalf("could not load configuration: %v", err)
	}
	logger.Init(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	log := logger.Get(ctx)

	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Errorw("scan finished with error", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// run scans every configured source and publishes the accepted records. The
// producer is closed before run returns.
func run(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) error {
	params, err := cfg.Filter.Params()
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}
	if len(cfg.Sources) == 0 {
		return errNoSources
	}

	var producer entity.MessageProducer
	if cfg.UseKafka {
		producer, err = kafka.NewKafkaProducer(cfg.Kafka.BootstrapServer, cfg.Kafka.RecordsTopic)
		if err != nil {
			return fmt.Errorf("could not create producer: %w", err)
		}
	} else {
		pipeProducer, consumer := memory.NewPipe(cfg.BatchSize * 2)
		producer = pipeProducer
		go drain(consumer.Messages())
	}
	defer producer.Close()

	publisher := application.NewRecordPublisher(producer)
	extractor := application.NewExtractor(log)

	published := 0
	err = extractor.ScanFiles(ctx, cfg.Sources, params, cfg.ScanConcurrency, func(record entity.LogRecord) error {
		if err := publisher.Publish(record); err != nil {
			return err
		}
		published++
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s stopped after %d records: %w", publisher.ScanID(), published, err)
	}
	log.Infow("scan finished", "scan_id", publisher.ScanID(), "sources", len(cfg.Sources), "published", published)
	return nil
}

// drain stands in for a broker when USE_KAFKA is not set.
func drain(ch <-chan string) {
	for range ch {
	}
}
