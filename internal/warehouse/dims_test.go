package warehouse

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestCampaignCreatesWithDerivedAttributes(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery("SELECT campaign_id FROM dim_campaign").
		WithArgs("Impression FB Perfume").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("INSERT INTO dim_campaign").
		WithArgs("Impression FB Perfume", "Impression", "Facebook").
		WillReturnRows(pgxmock.NewRows([]string{"campaign_id"}).AddRow(int64(1)))

	id, err := NewDims(mock).Campaign(context.Background(), "Impression FB Perfume")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(1), *id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignIdempotent(t *testing.T) {
	mock := newMock(t)

	// Two resolves of the same name: both hit the lookup, neither inserts.
	for range 2 {
		mock.ExpectQuery("SELECT campaign_id FROM dim_campaign").
			WithArgs("Visit IG Launch").
			WillReturnRows(pgxmock.NewRows([]string{"campaign_id"}).AddRow(int64(42)))
	}

	dims := NewDims(mock)
	first, err := dims.Campaign(context.Background(), "Visit IG Launch")
	require.NoError(t, err)
	second, err := dims.Campaign(context.Background(), "Visit IG Launch")
	require.NoError(t, err)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, *first, *second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignEmptyNameResolvesNil(t *testing.T) {
	mock := newMock(t)

	id, err := NewDims(mock).Campaign(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignInstagramPlatform(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery("SELECT campaign_id FROM dim_campaign").
		WithArgs("Mess IG Tet Sale").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("INSERT INTO dim_campaign").
		WithArgs("Mess IG Tet Sale", "Message", "Instagram").
		WillReturnRows(pgxmock.NewRows([]string{"campaign_id"}).AddRow(int64(2)))

	_, err := NewDims(mock).Campaign(context.Background(), "Mess IG Tet Sale")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDateCreatesCalendarRow(t *testing.T) {
	mock := newMock(t)

	// 2025-10-14 is a Tuesday in Q4, week 42 by day-of-year arithmetic.
	mock.ExpectQuery("SELECT date_key FROM dim_date").
		WithArgs(int64(20251014)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec("INSERT INTO dim_date").
		WithArgs(int64(20251014), "2025-10-14", 2025, 4, 10, "October", 41, 14, 2, "Tuesday", false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	key, err := NewDims(mock).Date(context.Background(), "2025-10-14")
	require.NoError(t, err)
	require.NotNil(t, key)
	assert.Equal(t, int64(20251014), *key)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDateWeekendSundayRemap(t *testing.T) {
	mock := newMock(t)

	// 2025-10-12 is a Sunday: day_of_week remaps from Go's 0 to 7.
	mock.ExpectQuery("SELECT date_key FROM dim_date").
		WithArgs(int64(20251012)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec("INSERT INTO dim_date").
		WithArgs(int64(20251012), "2025-10-12", 2025, 4, 10, "October", 41, 12, 7, "Sunday", true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	_, err := NewDims(mock).Date(context.Background(), "2025-10-12")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDateMalformedStillKeyed(t *testing.T) {
	mock := newMock(t)

	// Impossible calendar dates keep their numeric key; attributes zero.
	mock.ExpectQuery("SELECT date_key FROM dim_date").
		WithArgs(int64(20251345)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec("INSERT INTO dim_date").
		WithArgs(int64(20251345), "2025-13-45", 0, 0, 0, "", 0, 0, 0, "", false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	key, err := NewDims(mock).Date(context.Background(), "2025-13-45")
	require.NoError(t, err)
	require.NotNil(t, key)
	assert.Equal(t, int64(20251345), *key)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDateEmptyResolvesNil(t *testing.T) {
	mock := newMock(t)

	key, err := NewDims(mock).Date(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, key)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAgeGroupDefaultsToFirstSeeded(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery("SELECT age_id FROM dim_age_group").
		WithArgs(SeedAgeGroups[0]).
		WillReturnRows(pgxmock.NewRows([]string{"age_id"}).AddRow(int64(1)))

	id, err := NewDims(mock).AgeGroup(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, int64(1), *id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenderLowercasedAndDefaulted(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery("SELECT gender_id FROM dim_gender").
		WithArgs("female").
		WillReturnRows(pgxmock.NewRows([]string{"gender_id"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT gender_id FROM dim_gender").
		WithArgs(DefaultGender).
		WillReturnRows(pgxmock.NewRows([]string{"gender_id"}).AddRow(int64(3)))

	dims := NewDims(mock)
	_, err := dims.Gender(context.Background(), "Female")
	require.NoError(t, err)
	_, err = dims.Gender(context.Background(), "")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegionTypeDerivation(t *testing.T) {
	tests := []struct {
		name       string
		regionType string
	}{
		{"Ho Chi Minh City", "City"},
		{"Dong Nai", "Province"},
	}
	for i, tt := range tests {
		mock := newMock(t)
		mock.ExpectQuery("SELECT region_id FROM dim_region").
			WithArgs(tt.name).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery("INSERT INTO dim_region").
			WithArgs(tt.name, tt.regionType).
			WillReturnRows(pgxmock.NewRows([]string{"region_id"}).AddRow(int64(i + 1)))

		_, err := NewDims(mock).Region(context.Background(), tt.name)
		require.NoError(t, err, tt.name)
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}

func TestResolverSurfacesStoreErrors(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery("SELECT region_id FROM dim_region").
		WithArgs("Hanoi").
		WillReturnError(fmt.Errorf("connection reset"))

	_, err := NewDims(mock).Region(context.Background(), "Hanoi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lookup region")
	assert.NoError(t, mock.ExpectationsWereMet())
}
