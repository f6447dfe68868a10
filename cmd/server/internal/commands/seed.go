package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/medmatch/internal/logger"
	"github.com/wolfeidau/medmatch/internal/models"
	postgresstore "github.com/wolfeidau/medmatch/internal/store/postgres"
	"gopkg.in/yaml.v3"
)

// SeedCmd loads clinics and positions from a YAML fixture file, for demo
// and development environments.
type SeedCmd struct {
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING" required:""`
	File       string `help:"path to the YAML fixture file" required:"" type:"existingfile"`
}

type seedFile struct {
	Clinics []seedClinic `yaml:"clinics"`
}

type seedClinic struct {
	Name          string         `yaml:"name"`
	Department    *string        `yaml:"department"`
	Address       *string        `yaml:"address"`
	ContactPerson *string        `yaml:"contact_person"`
	Phone         *string        `yaml:"phone"`
	Positions     []seedPosition `yaml:"positions"`
}

type seedPosition struct {
	Title               string    `yaml:"title"`
	Description         string    `yaml:"description"`
	Specialty           string    `yaml:"specialty"`
	DurationMonths      int       `yaml:"duration_months"`
	StartDate           time.Time `yaml:"start_date"`
	ApplicationDeadline time.Time `yaml:"application_deadline"`
	Requirements        *string   `yaml:"requirements"`
	Status              string    `yaml:"status"`
}

func (c *SeedCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	content, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read fixture file: %w", err)
	}

	var fixture seedFile
	if err := yaml.Unmarshal(content, &fixture); err != nil {
		return fmt.Errorf("failed to parse fixture file: %w", err)
	}

	pool, err := postgresstore.NewPool(ctx, &postgresstore.PoolConfig{ConnString: c.ConnString})
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	clinics := postgresstore.NewClinicStore(pool)
	positions := postgresstore.NewPositionStore(pool)

	var clinicCount, positionCount int
	for _, sc := range fixture.Clinics {
		clinicID, err := uuid.NewV7()
		if err != nil {
			return err
		}

		now := time.Now()
		clinic := &models.Clinic{
			ClinicID:      clinicID,
			Name:          sc.Name,
			Department:    sc.Department,
			Address:       sc.Address,
			ContactPerson: sc.ContactPerson,
			Phone:         sc.Phone,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := clinics.Create(ctx, clinic); err != nil {
			return fmt.Errorf("failed to create clinic %q: %w", sc.Name, err)
		}
		clinicCount++

		for _, sp := range sc.Positions {
			status := models.PositionStatus(sp.Status)
			if sp.Status == "" {
				status = models.PositionStatusActive
			}
			if !models.ValidPositionStatus(string(status)) {
				return fmt.Errorf("invalid status %q for position %q", sp.Status, sp.Title)
			}

			positionID, err := uuid.NewV7()
			if err != nil {
				return err
			}

			position := &models.Position{
				PositionID:          positionID,
				ClinicID:            clinic.ClinicID,
				Title:               sp.Title,
				Description:         sp.Description,
				Specialty:           sp.Specialty,
				DurationMonths:      sp.DurationMonths,
				StartDate:           sp.StartDate,
				ApplicationDeadline: sp.ApplicationDeadline,
				Requirements:        sp.Requirements,
				Status:              status,
				CreatedAt:           now,
				UpdatedAt:           now,
			}
			if err := positions.Create(ctx, position); err != nil {
				return fmt.Errorf("failed to create position %q: %w", sp.Title, err)
			}
			positionCount++
		}
	}

	log.Info().Int("clinics", clinicCount).Int("positions", positionCount).Msg("Fixture data loaded")
	return nil
}
