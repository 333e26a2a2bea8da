package main

import (
	"context"
	"errors"

	"github.com/log4j_xml_reader_service/internal/application"
	"github.com/log4j_xml_reader_service/internal/domain/entity"
	"github.com/log4j_xml_reader_service/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newFollowCmd(opts *rootOptions) *cobra.Command {
	var (
		poll      bool
		fromStart bool
	)

	cmd := &cobra.Command{
		Use:   "follow <file>",
		Short: "Print matching records as they are appended to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := opts.params()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			follower := application.NewFollower(application.NewExtractor(logger.Get(ctx)), poll, fromStart)
			display := newDisplay(cmd.OutOrStdout(), opts.json)
			records := make(chan entity.LogRecord, 64)

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				defer close(records)
				return follower.Follow(ctx, args[0], params, records)
			})
			g.Go(func() error {
				for record := range records {
					if err := display.Print(record); err != nil {
						return err
					}
				}
				return nil
			})

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&poll, "poll", false, "poll for changes instead of using inotify")
	cmd.Flags().BoolVar(&fromStart, "from-start", false, "print existing records before following")
	return cmd
}
