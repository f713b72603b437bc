package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zatekoja/providermatch/internal/domain/providers"
)

func newGeocodeCmd(c *cli) *cobra.Command {
	var query providers.AddressQuery

	cmd := &cobra.Command{
		Use:   "geocode",
		Short: "Resolve an address through the geocoding cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query.State = strings.ToUpper(strings.TrimSpace(query.State))
			if query == (providers.AddressQuery{}) {
				return errors.New("at least one of --street, --city, --state or --zip is required")
			}
			entry := c.app.Match.Geocode(cmd.Context(), query)
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"address":      query.OneLine(),
				"lat":          entry.Lat,
				"lng":          entry.Lng,
				"resolved_via": entry.ResolvedVia,
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&query.Street, "street", "", "street address")
	f.StringVar(&query.City, "city", "", "city")
	f.StringVar(&query.State, "state", "", "two-letter state code")
	f.StringVar(&query.PostalCode, "zip", "", "ZIP code")

	return cmd
}
