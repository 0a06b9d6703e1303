package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"salesetl/internal/config"
)

func newValidateCmd(g *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the resolved configuration and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadConfig(cmd, g, nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if printIssues(out, config.ValidatePipeline(p)) {
				return errors.New("configuration is invalid")
			}
			fmt.Fprintln(out, "configuration is valid")
			return nil
		},
	}
}
