package main

import (
	"github.com/spf13/cobra"
	"github.com/zatekoja/providermatch/internal/domain/entities"
)

func newSearchCmd(c *cli) *cobra.Command {
	var (
		criteria entities.SearchCriteria
		age      int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search providers by location, specialty and symptoms",
		Example: `  matchctl search --location "Fairfax, VA" --specialty cardiology --age 54
  matchctl search --location ", VA" --symptoms "sore throat" --age 7
  matchctl search --specialty dermatology`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("age") {
				criteria.Age = &age
			}
			result, err := c.app.Match.Search(cmd.Context(), criteria)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	f := cmd.Flags()
	f.StringVar(&criteria.Location, "location", "", "\"City, ST\", a city alone, or \", ST\" for a whole state")
	f.StringVar(&criteria.Specialty, "specialty", "", "registry specialty label")
	f.StringVar(&criteria.SymptomsText, "symptoms", "", "free-text symptom description")
	f.IntVar(&age, "age", 0, "patient age in years")
	f.StringVar(&criteria.Gender, "gender", "", "patient gender")
	f.IntVar(&criteria.ResultLimit, "limit", 0, "maximum number of matches")

	return cmd
}
