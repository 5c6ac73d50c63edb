package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/iwvelando/auto-loan-calc/internal/calculator"
	"github.com/iwvelando/auto-loan-calc/internal/config"
	"github.com/iwvelando/auto-loan-calc/internal/rates"
	"github.com/iwvelando/auto-loan-calc/internal/report"
	"github.com/iwvelando/auto-loan-calc/pkg/constants"
	"github.com/iwvelando/auto-loan-calc/pkg/output"
	"github.com/iwvelando/auto-loan-calc/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type computeOptions struct {
	format         string
	out            string
	schedule       bool
	extraPrincipal float64
}

func newComputeCommand(root *rootOptions) *cobra.Command {
	opts := &computeOptions{}
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute every active scenario in the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompute(cmd.Context(), root, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "", "output format override: pretty, csv, json, pdf")
	cmd.Flags().StringVar(&opts.out, "out", "", "write output to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.schedule, "schedule", false, "append the amortization schedule (pretty and csv only)")
	cmd.Flags().Float64Var(&opts.extraPrincipal, "extra-principal", 0, "extra principal paid each month in the schedule")
	return cmd
}

func runCompute(ctx context.Context, root *rootOptions, opts *computeOptions, stdout io.Writer) error {
	configPath := root.configPath
	if configPath == "" {
		configPath = constants.DefaultConfigFile
	}

	conf, err := config.LoadConfiguration(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, root.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.OutputFormat()
	if opts.format != "" {
		outputFormat = opts.format
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.compute"),
		)
	}

	var table *rates.Table
	if conf.Rates.TableFile != "" {
		provider := rates.NewProvider(logger, nil)
		table, err = provider.LoadFile(ctx, conf.Rates.TableFile)
		if err != nil {
			return err
		}
	}

	results, err := report.Build(logger, *conf, table)
	if err != nil {
		return fmt.Errorf("failed to compute scenarios: %w", err)
	}

	w := stdout
	if opts.out != "" {
		file, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", opts.out, err)
		}
		defer func() {
			if closeErr := file.Close(); closeErr != nil {
				logger.Warn("failed to close output file",
					zap.String("op", "main.compute"),
					zap.Error(closeErr),
				)
			}
		}()
		w = file
	}

	return writeResults(w, outputFormat, results, opts)
}

func writeResults(w io.Writer, outputFormat string, results []calculator.Report, opts *computeOptions) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.WritePretty(w, results)
		if opts.schedule {
			return output.WriteSchedule(w, results, opts.extraPrincipal)
		}
	case constants.OutputFormatCSV:
		if _, err := io.WriteString(w, output.CsvString(results)); err != nil {
			return err
		}
		if opts.schedule {
			schedule, err := output.ScheduleCsvString(results, opts.extraPrincipal)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(w, "\n"+schedule); err != nil {
				return err
			}
		}
	case constants.OutputFormatJSON:
		return output.JSONFormat(w, results)
	case constants.OutputFormatPDF:
		return output.PDF(w, results)
	}
	return nil
}
