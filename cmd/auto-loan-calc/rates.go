package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iwvelando/auto-loan-calc/internal/config"
	"github.com/iwvelando/auto-loan-calc/internal/rates"
	"github.com/iwvelando/auto-loan-calc/internal/server"
	"github.com/iwvelando/auto-loan-calc/internal/store"
	"github.com/iwvelando/auto-loan-calc/pkg/format"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRatesCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Import and inspect county surtax rate tables",
	}
	cmd.AddCommand(newRatesImportCommand(root), newRatesLookupCommand(root))
	return cmd
}

func newRatesImportCommand(root *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Parse a JSON, CSV, TSV or XLSX rate table and save it as JSON",
		Long: "Parse a rate table and write the normalized JSON to --out (or stdout).\n" +
			"When REDIS_ADDR is set the table is also stored for the API server.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := initializeLogger(config.LoggingConfig{Format: "console"}, root.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			ctx := cmd.Context()
			cache, closeCache, err := openCache(ctx, logger, os.Getenv(server.EnvRedisAddr))
			if err != nil {
				return err
			}
			defer closeCache()

			provider := rates.NewProvider(logger, cache)
			if err := provider.Load(ctx); err != nil {
				return err
			}
			table, err := provider.LoadFile(ctx, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer file.Close()
				w = file
			}
			return writeTable(w, table)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the normalized table to this file")
	return cmd
}

func newRatesLookupCommand(root *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "lookup [county]",
		Short: "Show the surtax rate that applies to a county, or every listed county",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := rates.DefaultTable()
			if file != "" {
				provider := rates.NewProvider(nil, nil)
				loaded, err := provider.LoadFile(cmd.Context(), file)
				if err != nil {
					return err
				}
				table = loaded
			}

			if len(args) == 0 {
				for _, name := range table.Names() {
					if err := printLookup(cmd.OutOrStdout(), table, name); err != nil {
						return err
					}
				}
				return nil
			}
			return printLookup(cmd.OutOrStdout(), table, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "rate table to search instead of the built-in defaults")
	return cmd
}

func printLookup(w io.Writer, table *rates.Table, county string) error {
	rc, lookup := table.Context(county)
	source := "table"
	if lookup.Defaulted {
		source = "default"
	}
	_, err := fmt.Fprintf(w, "%s: county %s (%s), state %s on the full price, county applies to the first %s\n",
		lookup.County, format.RatePercent(lookup.Rate), source,
		format.RatePercent(rc.StateRate), format.Currency(rc.CountyCap))
	return err
}

func writeTable(w io.Writer, table *rates.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(table)
}

// openCache connects to Redis when addr is set and falls back to an
// in-process cache otherwise.
func openCache(ctx context.Context, logger *zap.Logger, addr string) (store.Cache, func(), error) {
	if strings.TrimSpace(addr) == "" {
		return store.NewMemoryCache(), func() {}, nil
	}
	redisCache := store.NewRedisCache(addr)
	if err := redisCache.Ping(ctx); err != nil {
		_ = redisCache.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	logger.Info(fmt.Sprintf("using redis cache at %s", addr),
		zap.String("op", "main.openCache"),
	)
	return redisCache, func() {
		if err := redisCache.Close(); err != nil {
			logger.Warn("failed to close redis cache",
				zap.String("op", "main.openCache"),
				zap.Error(err),
			)
		}
	}, nil
}
