package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSpecialtiesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "specialties",
		Short: "List the distinct specialties in the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := c.app.Match.Specialties(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range list {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}
