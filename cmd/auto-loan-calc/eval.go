package main

import (
	"fmt"
	"strings"

	"github.com/iwvelando/auto-loan-calc/pkg/format"
	"github.com/iwvelando/auto-loan-calc/pkg/priceexpr"
	"github.com/spf13/cobra"
)

func newEvalCommand() *cobra.Command {
	var msrp string
	cmd := &cobra.Command{
		Use:     "eval <expression>",
		Short:   "Evaluate a sale price expression such as \"MSRP - 6%\"",
		Example: `  auto-loan-calc eval "MSRP - 6%" --msrp 32,500`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fp := priceexpr.ParseFinalPrice(strings.Join(args, " "))
			base := format.ParseCurrency(msrp)
			value := fp.Resolve(base)
			if fp.Kind() == priceexpr.Blank {
				value = base
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", format.Currency(value), fp.Kind())
			return err
		},
	}
	cmd.Flags().StringVar(&msrp, "msrp", "0", "MSRP the expression is relative to")
	return cmd
}
