// Package report runs the configured scenarios through the calculator,
// resolving each scenario's vehicle and county tax rates.
package report

import (
	"errors"
	"fmt"

	"github.com/iwvelando/auto-loan-calc/internal/calculator"
	"github.com/iwvelando/auto-loan-calc/internal/config"
	"github.com/iwvelando/auto-loan-calc/internal/rates"
	"go.uber.org/zap"
)

// ErrNoActiveScenarios is returned when every configured scenario is inactive.
var ErrNoActiveScenarios = errors.New("no active scenarios")

// Build computes a report for every active scenario in conf, in order. A nil
// table uses rates.DefaultTable. Statewide rates set in the configuration
// take precedence over the table's.
func Build(logger *zap.Logger, conf config.Configuration, table *rates.Table) ([]calculator.Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if table == nil {
		table = rates.DefaultTable()
	}

	opts := conf.Options()
	if opts.DefaultCountyRate == nil {
		opts.DefaultCountyRate = calculator.Float(table.DefaultRate())
	}

	var results []calculator.Report
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "report.Build"),
			)
			continue
		}

		in, county := conf.ResolveInputs(scenario)
		rc, lookup := table.Context(county)
		if conf.Rates.StateRate != nil {
			rc.StateRate = *conf.Rates.StateRate
		}
		if conf.Rates.CountyCap != nil {
			rc.CountyCap = *conf.Rates.CountyCap
		}

		out := calculator.ComputeAllWithOptions(logger, in, rc, opts)
		rc.CountyRate = out.CountyRate

		for _, w := range out.Warnings {
			logger.Warn(fmt.Sprintf("scenario %s: %s", scenario.Name, w),
				zap.String("op", "report.Build"),
			)
		}
		logger.Debug(fmt.Sprintf("computed scenario %s", scenario.Name),
			zap.String("op", "report.Build"),
			zap.String("county", lookup.County),
			zap.Bool("countyDefaulted", lookup.Defaulted),
		)

		results = append(results, calculator.Report{
			Name:    scenario.Name,
			Vehicle: scenario.Vehicle,
			County:  lookup.County,
			Inputs:  in,
			Rates:   rc,
			Outputs: out,
		})
	}

	if len(results) == 0 {
		return nil, ErrNoActiveScenarios
	}
	return results, nil
}
