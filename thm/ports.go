package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itohio/thmeter/pkg/thm"
)

func NewPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "ports",
		GroupID: gTools,
		Short:   "List serial ports",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ports, err := thm.Ports()
			if err != nil {
				return err
			}
			if len(ports) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no serial ports found")
				return nil
			}
			for _, p := range ports {
				if p.Description != "" && p.Description != p.Name {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", bold(p.Name), p.Description)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), bold(p.Name))
				}
			}
			return nil
		},
	}
}
