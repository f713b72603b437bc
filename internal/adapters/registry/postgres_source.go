package registry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/providermatch/internal/domain/entities"
	"github.com/zatekoja/providermatch/internal/domain/repositories"
)

var registryColumns = []interface{}{
	"national_id", "facility_name", "first_name", "last_name", "credentials",
	"gender", "graduation_year", "primary_specialty", "address_line1",
	"city", "state", "postal_code", "phone",
}

// PostgresSource reads providers from a registry table
type PostgresSource struct {
	db    *sql.DB
	qb    *goqu.Database
	table string
}

// NewPostgresSource creates a table-backed registry source
func NewPostgresSource(db *sql.DB, table string) repositories.RegistrySource {
	return &PostgresSource{
		db:    db,
		qb:    goqu.New("postgres", db),
		table: table,
	}
}

// Describe names the source for logs
func (s *PostgresSource) Describe() string {
	return "postgres:" + s.table
}

// LoadProviders reads every valid row ordered by insertion id
func (s *PostgresSource) LoadProviders(ctx context.Context) ([]*entities.ProviderRecord, error) {
	query, args, err := s.qb.From(s.table).
		Select(registryColumns...).
		Order(goqu.C("id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build registry query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query registry table: %w", err)
	}
	defer rows.Close()

	var (
		providers []*entities.ProviderRecord
		skipped   int
	)
	for rows.Next() {
		var (
			facility, credentials, gender, address sql.NullString
			city, state, postal, phone             sql.NullString
			gradYear                               sql.NullInt64
			rec                                    entities.ProviderRecord
		)
		if err := rows.Scan(
			&rec.NationalID, &facility, &rec.FirstName, &rec.LastName, &credentials,
			&gender, &gradYear, &rec.PrimarySpecialty, &address,
			&city, &state, &postal, &phone,
		); err != nil {
			return nil, fmt.Errorf("failed to scan registry row: %w", err)
		}

		rec.FacilityName = facility.String
		rec.Credentials = credentials.String
		rec.Gender = gender.String
		rec.AddressLine1 = address.String
		rec.City = city.String
		rec.State = state.String
		rec.PostalCode = postal.String
		rec.Phone = phone.String
		if gradYear.Valid && gradYear.Int64 > 0 {
			year := int(gradYear.Int64)
			rec.GraduationYear = &year
		}

		rec.Normalize()
		if err := rec.Validate(); err != nil {
			skipped++
			log.Debug().Str("national_id", rec.NationalID).Err(err).Msg("Skipping registry row")
			continue
		}
		providers = append(providers, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate registry rows: %w", err)
	}

	log.Info().Int("loaded", len(providers)).Int("skipped", skipped).Str("table", s.table).Msg("Registry table read")
	return providers, nil
}
