package main

import (
	"github.com/log4j_xml_reader_service/internal/config"
	"github.com/log4j_xml_reader_service/internal/domain/entity"
	"github.com/log4j_xml_reader_service/internal/infrastructure/logger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile    string
	configFile string
	logLevel   string
	json       bool
	filter     config.FilterConfig

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "log4jscan",
		Short:         "Extract and filter events from log4j XML log files",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.envFile, opts.configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Logging.Level = opts.logLevel
			}
			mergeFilter(cmd, &cfg.Filter, opts.filter)
			logger.Init(cfg.Logging)
			opts.cfg = cfg
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env", ".env", "environment variables file")
	flags.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "diagnostic log level")
	flags.BoolVar(&opts.json, "json", false, "print records as JSON lines")
	flags.StringVar(&opts.filter.Level, "level", "", "only this level: error, info, debug, warn, fatal")
	flags.StringVar(&opts.filter.Since, "since", "", "skip records older than this date (RFC3339 or 2006-01-02 15:04:05)")
	flags.StringVar(&opts.filter.Thread, "thread", "", "exact thread name, case-insensitive")
	flags.StringVar(&opts.filter.Message, "message", "", "message substring, case-insensitive")
	flags.StringVar(&opts.filter.Logger, "logger", "", "logger substring, case-insensitive")
	flags.StringVar(&opts.filter.Expression, "expr", "", `extra filter expression, e.g. Custom["tenant"] == "acme"`)

	cmd.AddCommand(newScanCmd(opts), newFollowCmd(opts))
	return cmd
}

// mergeFilter lets explicitly set flags override configured criteria.
func mergeFilter(cmd *cobra.Command, dst *config.FilterConfig, flags config.FilterConfig) {
	set := func(name string, field *string, value string) {
		if cmd.Flags().Changed(name) {
			*field = value
		}
	}
	set("level", &dst.Level, flags.Level)
	set("since", &dst.Since, flags.Since)
	set("thread", &dst.Thread, flags.Thread)
	set("message", &dst.Message, flags.Message)
	set("logger", &dst.Logger, flags.Logger)
	set("expr", &dst.Expression, flags.Expression)
}

func (o *rootOptions) params() (*entity.FilterParams, error) {
	return o.cfg.Filter.Params()
}
