package chatprofiles

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	qUpsert = `(?s)^INSERT\s+INTO\s+chat_profiles\s*\(id,\s*name,\s*qualification,\s*phone,\s*dob,\s*about,\s*skills,\s*profile_photo,\s*document\)` +
		`\s*VALUES\s*\(\$1,.*\$9\)\s*ON\s+CONFLICT\s*\(phone\)\s*DO\s+UPDATE\s+SET.*` +
		`profile_photo\s*=\s*COALESCE\(EXCLUDED\.profile_photo,\s*chat_profiles\.profile_photo\),\s*` +
		`document\s*=\s*COALESCE\(EXCLUDED\.document,\s*chat_profiles\.document\).*RETURNING\s+id,`
	qFind = `(?s)^SELECT\s+id,.*FROM\s+chat_profiles\s+WHERE\s+phone\s*=\s*\$1$`
)

var profileCols = []string{"id", "name", "qualification", "phone", "dob", "about", "skills", "profile_photo", "document", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func profileRow(document any) *sqlmock.Rows {
	return sqlmock.NewRows(profileCols).AddRow(
		"p-1", "Ann", "BSc", "+100", time.Date(1995, 3, 4, 0, 0, 0, 0, time.UTC), "hello",
		[]byte(`["go","rust"]`), nil, document, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	)
}

func TestPostgres_Upsert_SingleStatementOnConflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qUpsert).
		WithArgs(sqlmock.AnyArg(), "Ann", "BSc", "+100", sqlmock.AnyArg(), "hello", `["go","rust"]`, nil, nil).
		WillReturnRows(profileRow("uploads/cv.pdf"))

	got, err := repo.Upsert(context.Background(), newProfile("+100"))
	require.NoError(t, err)
	assert.Equal(t, "p-1", got.ID)
	assert.Equal(t, []string{"go", "rust"}, got.Skills)
	assert.Equal(t, "1995-03-04", got.DOB.String())
	assert.Nil(t, got.ProfilePhoto)
	require.NotNil(t, got.Document)
	assert.Equal(t, "uploads/cv.pdf", *got.Document)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Upsert_PassesOptionalReferences(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	p := newProfile("+100")
	p.ProfilePhoto = strPtr("https://cdn/p.png")
	p.Document = strPtr("uploads/cv.pdf")

	mock.ExpectQuery(qUpsert).
		WithArgs(sqlmock.AnyArg(), "Ann", "BSc", "+100", sqlmock.AnyArg(), "hello", `["go","rust"]`, "https://cdn/p.png", "uploads/cv.pdf").
		WillReturnRows(profileRow("uploads/cv.pdf"))

	_, err := repo.Upsert(context.Background(), p)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Upsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qUpsert).WillReturnError(errors.New("db down"))

	_, err := repo.Upsert(context.Background(), newProfile("+100"))
	require.ErrorContains(t, err, "db error: db down")
}

func TestPostgres_FindByPhone(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qFind).WithArgs("+100").WillReturnRows(profileRow(nil))

	got, err := repo.FindByPhone(context.Background(), "+100")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)
	assert.Nil(t, got.Document)
}

func TestPostgres_FindByPhone_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qFind).WithArgs("+404").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByPhone(context.Background(), "+404")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestPostgres_FindByPhone_BadSkills(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(profileCols).AddRow(
		"p-1", "Ann", "BSc", "+100", time.Now(), "hello", []byte(`{`), nil, nil, time.Now(),
	)
	mock.ExpectQuery(qFind).WithArgs("+100").WillReturnRows(rows)

	_, err := repo.FindByPhone(context.Background(), "+100")
	require.ErrorContains(t, err, "decode skills")
}
