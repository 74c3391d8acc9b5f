package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveDatesUTC(t *testing.T) {
	gotToday, gotYesterday := ResolveDates(testClock, "UTC")
	assert.True(t, gotToday.Equal(today))
	assert.True(t, gotYesterday.Equal(yesterday))
}

func TestResolveDatesCrossesDateLine(t *testing.T) {
	// 2026-03-15 10:30 UTC is already 2026-03-16 in Auckland (UTC+13 during NZDT).
	gotToday, gotYesterday := ResolveDates(testClock, "Pacific/Auckland")
	assert.True(t, gotToday.Equal(date(2026, time.March, 16)))
	assert.True(t, gotYesterday.Equal(date(2026, time.March, 15)))

	// Same instant is still 2026-03-15 morning in New York (UTC-4 during EDT).
	gotToday, _ = ResolveDates(testClock, "America/New_York")
	assert.True(t, gotToday.Equal(date(2026, time.March, 15)))
}

func TestResolveDatesLateEveningLocal(t *testing.T) {
	// 2026-03-15 03:30 UTC is 2026-03-14 23:30 in New York.
	instant := time.Date(2026, time.March, 15, 3, 30, 0, 0, time.UTC)
	gotToday, _ := ResolveDates(instant, "America/New_York")
	assert.True(t, gotToday.Equal(date(2026, time.March, 14)))
}

func TestResolveDatesInvalidTimezoneFallsBackToUTC(t *testing.T) {
	gotToday, _ := ResolveDates(testClock, "Not/AZone")
	assert.True(t, gotToday.Equal(today))

	gotToday, _ = ResolveDates(testClock, "")
	assert.True(t, gotToday.Equal(today))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, daysBetween(today, today))
	assert.Equal(t, 1, daysBetween(yesterday, today))
	assert.Equal(t, 3, daysBetween(date(2026, time.March, 12), today))
	assert.Equal(t, -1, daysBetween(today, yesterday))
}
