package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/google/uuid"
)

const accountColumns = `id, salutation, name, email, phone_number, date_of_birth, address,
		 password_hash, profile_photo, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	var photo sql.NullString
	err := row.Scan(&a.ID, &a.Salutation, &a.Name, &a.Email, &a.PhoneNumber, &a.DateOfBirth,
		&a.Address, &a.PasswordHash, &photo, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if photo.Valid {
		a.ProfilePhoto = &photo.String
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if err := validateNew(account); err != nil {
		return nil, err
	}

	stored := account.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO accounts (id, salutation, name, email, phone_number, date_of_birth, address, password_hash, profile_photo)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		stored.ID, stored.Salutation, stored.Name, stored.Email, stored.PhoneNumber,
		stored.DateOfBirth, stored.Address, stored.PasswordHash, stored.ProfilePhoto,
	).Scan(&stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		if _, ok := dbx.IsUniqueViolation(err); ok {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return stored, nil
}

func (r *PostgresRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1 OR phone_number = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email, phone).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.findOne(ctx, r.db, query, email)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrNotFound
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.findOne(ctx, r.db, query, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, db dbx.DBTX, query string, args ...any) (*models.Account, error) {
	a, err := scanAccount(db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// UpdateFields locks the row, applies patch and writes it back. When the
// repository is bound to a transaction it runs inside that transaction.
func (r *PostgresRepository) UpdateFields(ctx context.Context, id string, patch models.AccountPatch) (*models.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrNotFound
	}

	var updated *models.Account
	update := func(ctx context.Context, tx dbx.DBTX) error {
		a, err := r.findOne(ctx, tx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			updated = a
			return nil
		}
		patch.Apply(a)

		query :=
			`UPDATE accounts
			 SET salutation = $2, name = $3, address = $4, date_of_birth = $5, profile_photo = $6, updated_at = now()
			 WHERE id = $1
			 RETURNING updated_at`

		err = tx.QueryRowContext(ctx, query, a.ID, a.Salutation, a.Name, a.Address, a.DateOfBirth, a.ProfilePhoto).
			Scan(&a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		updated = a
		return nil
	}

	var err error
	if beginner, ok := r.db.(dbx.TxBeginner); ok {
		err = dbx.WithTx(ctx, beginner, nil, update)
	} else {
		err = update(ctx, r.db)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}
