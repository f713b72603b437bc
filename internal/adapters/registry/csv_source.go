// Package registry reads the provider registry from a flat file or a database table.
package registry

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/providermatch/internal/domain/entities"
	"github.com/zatekoja/providermatch/internal/domain/repositories"
)

// column names accepted for each registry field, lowercase
var headerAliases = map[string][]string{
	"national_id":     {"npi", "national_id", "provider_id"},
	"first_name":      {"frst_nm", "first_name", "provider_first_name"},
	"last_name":       {"lst_nm", "last_name", "provider_last_name"},
	"credentials":     {"cred", "credentials", "credential"},
	"gender":          {"gndr", "gender"},
	"graduation_year": {"grd_yr", "graduation_year", "grad_year"},
	"specialty":       {"pri_spec", "primary_specialty", "specialty"},
	"facility_name":   {"facility_name", "org_nm", "organization_name"},
	"address_line1":   {"adr_ln_1", "address_line1", "address"},
	"city":            {"citytown", "cty", "city"},
	"state":           {"st", "state"},
	"postal_code":     {"zip_code", "zip", "postal_code"},
	"phone":           {"telephone_number", "phn_numbr", "phone"},
}

var requiredColumns = []string{"national_id", "first_name", "last_name", "specialty"}

// CSVSource reads providers from a CSV file, gzip-compressed when the path ends in .gz
type CSVSource struct {
	path string
}

// NewCSVSource creates a file-backed registry source
func NewCSVSource(path string) repositories.RegistrySource {
	return &CSVSource{path: path}
}

// Describe names the source for logs
func (s *CSVSource) Describe() string {
	return "file:" + s.path
}

// LoadProviders reads every valid row of the file
func (s *CSVSource) LoadProviders(ctx context.Context) ([]*entities.ProviderRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(s.path), ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip registry: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	return ReadProviders(ctx, r)
}

// ReadProviders parses a registry CSV stream with a header row
func ReadProviders(ctx context.Context, r io.Reader) ([]*entities.ProviderRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read registry header: %w", err)
	}
	columns, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var (
		providers []*entities.ProviderRecord
		skipped   int
		line      = 1
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read registry row %d: %w", line, err)
		}

		rec := columns.record(row)
		rec.Normalize()
		if err := rec.Validate(); err != nil {
			skipped++
			log.Debug().Int("line", line).Err(err).Msg("Skipping registry row")
			continue
		}
		providers = append(providers, rec)
	}

	log.Info().Int("loaded", len(providers)).Int("skipped", skipped).Msg("Registry file parsed")
	return providers, nil
}

type columnIndex map[string]int

func resolveColumns(header []string) (columnIndex, error) {
	position := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := position[name]; !seen {
			position[name] = i
		}
	}

	columns := make(columnIndex, len(headerAliases))
	for field, aliases := range headerAliases {
		for _, alias := range aliases {
			if i, ok := position[alias]; ok {
				columns[field] = i
				break
			}
		}
	}

	var missing []string
	for _, field := range requiredColumns {
		if _, ok := columns[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, errors.New("registry header is missing columns: " + strings.Join(missing, ", "))
	}
	return columns, nil
}

func (c columnIndex) get(row []string, field string) string {
	i, ok := c[field]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func (c columnIndex) record(row []string) *entities.ProviderRecord {
	rec := &entities.ProviderRecord{
		NationalID:       c.get(row, "national_id"),
		FacilityName:     c.get(row, "facility_name"),
		FirstName:        c.get(row, "first_name"),
		LastName:         c.get(row, "last_name"),
		Credentials:      c.get(row, "credentials"),
		Gender:           c.get(row, "gender"),
		PrimarySpecialty: c.get(row, "specialty"),
		AddressLine1:     c.get(row, "address_line1"),
		City:             c.get(row, "city"),
		State:            c.get(row, "state"),
		PostalCode:       c.get(row, "postal_code"),
		Phone:            c.get(row, "phone"),
	}
	rec.GraduationYear = parseYear(c.get(row, "graduation_year"))
	return rec
}

func parseYear(s string) *int {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || year <= 0 {
		return nil
	}
	return &year
}
