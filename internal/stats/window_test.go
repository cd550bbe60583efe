package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowDurations(t *testing.T) {
	// June 1 is day 152 of a non-leap year
	now := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, 24*time.Hour, Last24Hours.Duration(now))
	assert.Equal(t, 30*24*time.Hour, Last30Days.Duration(now))
	assert.Equal(t, 152*24*time.Hour, YearToDate.Duration(now))
}

func TestYearToDateTracksOrdinalDay(t *testing.T) {
	jan1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 24*time.Hour, YearToDate.Duration(jan1))

	dec31 := time.Date(2025, 12, 31, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 365*24*time.Hour, YearToDate.Duration(dec31))
}

func TestYearToDateVersus30Days(t *testing.T) {
	// day 41, so year-to-date is the wider window
	feb10 := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	assert.Greater(t, YearToDate.Duration(feb10), Last30Days.Duration(feb10))

	// day 15, so the 30-day window is wider
	jan15 := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Less(t, YearToDate.Duration(jan15), Last30Days.Duration(jan15))
}
