package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1990-05-17", "1990-05-17", false},
		{" 1990-05-17 ", "1990-05-17", false},
		{"1990-05-17T23:30:00Z", "1990-05-17", false},
		{"1990-05-17T23:30:00+02:00", "1990-05-17", false},
		{"17/05/1990", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDate(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
			assert.Equal(t, time.UTC, d.Location())
		})
	}
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		D Date `json:"d"`
	}

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2001-02-03T10:00:00Z"}`), &w))
	assert.Equal(t, "2001-02-03", w.D.String())

	b, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2001-02-03"}`, string(b))

	b, err = json.Marshal(wrapper{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":null}`, string(b))

	require.Error(t, json.Unmarshal([]byte(`{"d":"tomorrow"}`), &w))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(1999, 12, 31, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, "1999-12-31", d.String())

	require.NoError(t, d.Scan([]byte("2000-01-01")))
	assert.Equal(t, "2000-01-01", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	require.Error(t, d.Scan(42))
}

func TestAccount_JSONOmitsPasswordHash(t *testing.T) {
	a := Account{ID: "1", Email: "a@example.com", PasswordHash: "$2a$12$secret"}
	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.NotContains(t, string(b), "password")
}

func TestAccount_MissingFields(t *testing.T) {
	a := &Account{Name: "Ann", Email: "ann@example.com", PasswordHash: "h"}
	assert.Equal(t, []string{"salutation", "phoneNumber", "dateOfBirth", "address"}, a.MissingFields())

	full := &Account{
		Salutation: "Ms", Name: "Ann", Email: "ann@example.com", PhoneNumber: "+100",
		DateOfBirth: NewDate(time.Now()), Address: "Main st", PasswordHash: "h",
	}
	assert.Empty(t, full.MissingFields())
}

func TestAccountPatch_Apply(t *testing.T) {
	a := &Account{Name: "Ann", Address: "Old"}
	patch := AccountPatch{Address: strPtr("New"), ProfilePhoto: strPtr("uploads/1.png")}

	assert.False(t, patch.IsEmpty())
	patch.Apply(a)

	want := &Account{Name: "Ann", Address: "New", ProfilePhoto: strPtr("uploads/1.png")}
	assert.Empty(t, cmp.Diff(want, a))
	assert.True(t, AccountPatch{}.IsEmpty())
}

func TestAccount_CloneIsDeep(t *testing.T) {
	a := &Account{ProfilePhoto: strPtr("x")}
	c := a.Clone()
	*c.ProfilePhoto = "y"
	assert.Equal(t, "x", *a.ProfilePhoto)
}

func TestChatProfile_CloneAndMerge(t *testing.T) {
	existing := &ChatProfile{Phone: "+1", Skills: []string{"go"}, ProfilePhoto: strPtr("p"), Document: strPtr("d")}

	c := existing.Clone()
	c.Skills[0] = "rust"
	assert.Equal(t, "go", existing.Skills[0])

	incoming := &ChatProfile{Phone: "+1", Document: strPtr("d2")}
	incoming.Merge(existing)
	assert.Equal(t, "p", *incoming.ProfilePhoto)
	assert.Equal(t, "d2", *incoming.Document)
}
