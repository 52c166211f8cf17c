package chatprofiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/google/uuid"
)

const profileColumns = `id, name, qualification, phone, dob, about, skills, profile_photo, document, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanProfile(row interface{ Scan(...any) error }) (*models.ChatProfile, error) {
	p := &models.ChatProfile{}
	var (
		skills          []byte
		photo, document sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &p.Qualification, &p.Phone, &p.DOB, &p.About,
		&skills, &photo, &document, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(skills, &p.Skills); err != nil {
		return nil, fmt.Errorf("decode skills: %w", err)
	}
	if photo.Valid {
		p.ProfilePhoto = &photo.String
	}
	if document.Valid {
		p.Document = &document.String
	}
	return p, nil
}

// Upsert relies on the unique constraint on phone: ON CONFLICT turns the
// insert into an update in a single statement.
func (r *PostgresRepository) Upsert(ctx context.Context, profile *models.ChatProfile) (*models.ChatProfile, error) {
	skills, err := json.Marshal(nonNil(profile.Skills))
	if err != nil {
		return nil, fmt.Errorf("encode skills: %w", err)
	}

	query :=
		`INSERT INTO chat_profiles (id, name, qualification, phone, dob, about, skills, profile_photo, document)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (phone) DO UPDATE SET
		   name = EXCLUDED.name,
		   qualification = EXCLUDED.qualification,
		   dob = EXCLUDED.dob,
		   about = EXCLUDED.about,
		   skills = EXCLUDED.skills,
		   profile_photo = COALESCE(EXCLUDED.profile_photo, chat_profiles.profile_photo),
		   document = COALESCE(EXCLUDED.document, chat_profiles.document),
		   updated_at = now()
		 RETURNING ` + profileColumns

	stored, err := scanProfile(r.db.QueryRowContext(ctx, query,
		uuid.NewString(), profile.Name, profile.Qualification, profile.Phone, profile.DOB,
		profile.About, string(skills), profile.ProfilePhoto, profile.Document,
	))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return stored, nil
}

func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (*models.ChatProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM chat_profiles WHERE phone = $1`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, phone))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
