package main

import (
	"github.com/log4j_xml_reader_service/internal/application"
	"github.com/log4j_xml_reader_service/internal/domain/entity"
	"github.com/log4j_xml_reader_service/internal/infrastructure/kafka"
	"github.com/log4j_xml_reader_service/internal/infrastructure/logger"
	"github.com/spf13/cobra"
)

func newScanCmd(opts *rootOptions) *cobra.Command {
	var (
		publish     bool
		limit       int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "scan <file>...",
		Short: "Print the matching records of one or more files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := opts.params()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			extractor := application.NewExtractor(logger.Get(ctx))
			display := newDisplay(cmd.OutOrStdout(), opts.json)

			var publisher *application.RecordPublisher
			if publish {
				producer, err := kafka.NewKafkaProducer(opts.cfg.Kafka.BootstrapServer, opts.cfg.Kafka.RecordsTopic)
				if err != nil {
					return err
				}
				defer producer.Close()
				publisher = application.NewRecordPublisher(producer)
			}

			emit := func(record entity.LogRecord) error {
				if publisher != nil {
					if err := publisher.Publish(record); err != nil {
						return err
					}
				}
				return display.Print(record)
			}

			if len(args) == 1 {
				printed := 0
				for record, err := range extractor.Records(ctx, args[0], params) {
					if err != nil {
						return err
					}
					if err := emit(record); err != nil {
						return err
					}
					printed++
					if limit > 0 && printed >= limit {
						break
					}
				}
				return nil
			}

			if concurrency <= 0 {
				concurrency = opts.cfg.ScanConcurrency
			}
			return extractor.ScanFiles(ctx, args, params, concurrency, emit)
		},
	}

	cmd.Flags().BoolVar(&publish, "publish", false, "also publish records to the configured Kafka topic")
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many records (single file only)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "files scanned at once when several are given")
	return cmd
}
