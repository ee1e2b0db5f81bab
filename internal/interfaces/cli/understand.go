package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

func newUnderstandCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "understand <query...>",
		Short:   "Extract, validate, expand, and disambiguate a claim query",
		Example: `  clearclaim understand "Knee surgery for a 45-year-old male with a 3-month-old premium policy"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := getContext(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()

			u, err := cc.service.UnderstandQuery(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
}
