package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"job-board-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOfUsesLocalCalendarDay(t *testing.T) {
	// 14 March 2024 00:30 in Jakarta is still 13 March in UTC.
	jakarta := time.FixedZone("WIB", 7*3600)
	picked := time.Date(2024, time.March, 14, 0, 30, 0, 0, jakarta)

	d := domain.DateOf(picked)
	assert.Equal(t, "2024-03-14", d.String())
	assert.Equal(t, "14 March 2024", d.Display())
}

func TestDateRoundTripAcrossZones(t *testing.T) {
	d, err := domain.ParseDate("2024-03-14")
	require.NoError(t, err)

	for _, offset := range []int{-11, -5, 0, 7, 14} {
		loc := time.FixedZone("viewer", offset*3600)
		viewed := domain.DateOf(d.In(loc))
		assert.Equal(t, "14 March 2024", viewed.Display(), "offset %d", offset)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "14/03/2024", "2024-13-01", "2024-02-30"} {
		_, err := domain.ParseDate(s)
		assert.Error(t, err, s)
	}
}

func TestDateJSON(t *testing.T) {
	d := domain.Date{Year: 1999, Month: time.December, Day: 1}
	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"1999-12-01"`, string(raw))

	var back domain.Date
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, d, back)
}
