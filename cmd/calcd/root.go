package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"calculator-widget/internal/calculator"
	"calculator-widget/internal/config"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	EnvFiles []string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	serve := newServeCommand(opts)

	cmd := &cobra.Command{
		Use:           "calcd",
		Short:         "Calculator widget service",
		Long:          "Serves the calculator widget: keypad and keyboard input, evaluation, and a persisted history.",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(opts.EnvFiles...)
		},
		RunE: serve.RunE,
	}

	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", nil, "dotenv files to load (default .env)")

	cmd.AddCommand(serve)
	cmd.AddCommand(newEvalCommand())

	return cmd
}

func newEvalCommand() *cobra.Command {
	var locale string

	cmd := &cobra.Command{
		Use:   "eval EXPRESSION...",
		Short: "Evaluate expressions and print the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := calculator.DefaultLocale
			if locale != "" {
				var err error
				if loc, err = calculator.NewLocale(locale); err != nil {
					return err
				}
			}

			for _, expr := range args {
				result, err := loc.Evaluate(expr)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", expr, calculator.ErrorMarker)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", expr, loc.FormatResult(result))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&locale, "locale", "", "BCP 47 locale for the input and output separators")

	return cmd
}
