package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestNext_FixedDurationFrequencies(t *testing.T) {
	anchor := date(2024, time.January, 1, 9)

	cases := []struct {
		freq Frequency
		days int
	}{
		{FrequencyDaily, 1},
		{FrequencyWeekly, 7},
		{FrequencyBiWeekly, 14},
	}

	for _, tc := range cases {
		next := Next(anchor, Rule{Frequency: tc.freq})
		assert.Equal(t, time.Duration(tc.days)*24*time.Hour, next.Sub(anchor),
			"frequency %s", tc.freq)
	}
}

func TestNext_MonthlyPreservesDayOfMonth(t *testing.T) {
	next := Next(date(2024, time.March, 15, 9), Rule{Frequency: FrequencyMonthly})
	assert.Equal(t, date(2024, time.April, 15, 9), next)
}

func TestNext_MonthlyClampsShortMonths(t *testing.T) {
	// 2024 年是闰年，Jan 31 -> Feb 29
	next := Next(date(2024, time.January, 31, 9), Rule{Frequency: FrequencyMonthly})
	assert.Equal(t, date(2024, time.February, 29, 9), next)

	// 平年钳到 Feb 28
	next = Next(date(2023, time.January, 31, 9), Rule{Frequency: FrequencyMonthly})
	assert.Equal(t, date(2023, time.February, 28, 9), next)

	// May 31 -> Jun 30
	next = Next(date(2024, time.May, 31, 9), Rule{Frequency: FrequencyMonthly})
	assert.Equal(t, date(2024, time.June, 30, 9), next)
}

func TestNext_MonthlyYearRollover(t *testing.T) {
	next := Next(date(2024, time.December, 31, 9), Rule{Frequency: FrequencyMonthly})
	assert.Equal(t, date(2025, time.January, 31, 9), next)
}

func TestNext_CustomDaysAndHours(t *testing.T) {
	anchor := date(2024, time.January, 1, 9)

	next := Next(anchor, Rule{Frequency: FrequencyCustom, CustomDays: 3, CustomHours: 12})
	assert.Equal(t, anchor.AddDate(0, 0, 3).Add(12*time.Hour), next)
}

func TestNext_CustomZeroFallsBackToWeekly(t *testing.T) {
	anchor := date(2024, time.January, 1, 9)

	next := Next(anchor, Rule{Frequency: FrequencyCustom})
	assert.Equal(t, anchor.AddDate(0, 0, 7), next)
}

func TestNext_UnknownFrequencyFallsBackToWeekly(t *testing.T) {
	anchor := date(2024, time.January, 1, 9)

	next := Next(anchor, Rule{Frequency: Frequency("fortnightly-ish")})
	assert.Equal(t, anchor.AddDate(0, 0, 7), next)
}

func TestParseFrequency(t *testing.T) {
	freq, err := ParseFrequency("  Weekly ")
	require.NoError(t, err)
	assert.Equal(t, FrequencyWeekly, freq)

	freq, err = ParseFrequency("bi-weekly")
	require.NoError(t, err)
	assert.Equal(t, FrequencyBiWeekly, freq)

	_, err = ParseFrequency("fortnightly")
	assert.Error(t, err)
}
