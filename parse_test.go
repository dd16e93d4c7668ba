package nntp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	cases := []struct {
		in       string
		wantOK   bool
		wantLow  int64
		wantHigh *int64
	}{
		{"5", true, 5, int64Ptr(5)},
		{"5-", true, 5, nil},
		{"5-10", true, 5, int64Ptr(10)},
		{"  5-10  ", true, 5, int64Ptr(10)},
		{"", false, 0, nil},
		{"-5", false, 0, nil},
		{"5-10-15", false, 0, nil},
		{"abc", false, 0, nil},
		{"5-abc", false, 0, nil},
	}
	for _, c := range cases {
		r, ok := ParseRange(c.in)
		require.Equal(t, c.wantOK, ok, "input %q", c.in)
		if !ok {
			continue
		}
		assert.Equal(t, c.wantLow, r.Low, "input %q", c.in)
		if c.wantHigh == nil {
			assert.Nil(t, r.High, "input %q", c.in)
		} else {
			require.NotNil(t, r.High, "input %q", c.in)
			assert.Equal(t, *c.wantHigh, *r.High, "input %q", c.in)
		}
	}
}

func int64Ptr(n int64) *int64 { return &n }

func TestParseDateTimeModern(t *testing.T) {
	got, err := ParseDateTime("20211231", "235959")
	require.NoError(t, err)
	want := time.Date(2021, time.December, 31, 23, 59, 59, 0, time.UTC)
	assert.True(t, got.Equal(want))
}

func TestParseDateTimeCombined(t *testing.T) {
	got, err := ParseDateTime("20211231235959", "")
	require.NoError(t, err)
	want := time.Date(2021, time.December, 31, 23, 59, 59, 0, time.UTC)
	assert.True(t, got.Equal(want))
}

func TestParseDateTimeLegacyCenturyHeuristic(t *testing.T) {
	got, err := ParseDateTime("690101", "000000")
	require.NoError(t, err)
	assert.Equal(t, 2069, got.Year())

	got, err = ParseDateTime("700101", "000000")
	require.NoError(t, err)
	assert.Equal(t, 1970, got.Year())

	got, err = ParseDateTime("990101", "000000")
	require.NoError(t, err)
	assert.Equal(t, 1999, got.Year())
}

func TestParseDateTimeRejectsOutOfRange(t *testing.T) {
	_, err := ParseDateTime("20211301", "000000")
	assert.Error(t, err)

	_, err = ParseDateTime("20211231", "256000")
	assert.Error(t, err)
}

func TestFormatDateTimeRoundTrip(t *testing.T) {
	instants := []time.Time{
		time.Date(2021, time.December, 31, 23, 59, 59, 0, time.UTC),
		time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2005, time.July, 4, 12, 30, 0, 0, time.UTC),
	}
	for _, instant := range instants {
		dateStr, timeStr := FormatDateTime(instant, false)
		got, err := ParseDateTime(dateStr, timeStr)
		require.NoError(t, err)
		assert.True(t, got.Equal(instant), "modern round trip for %v", instant)

		legacyDate, legacyTime := FormatDateTime(instant, true)
		got, err = ParseDateTime(legacyDate, legacyTime)
		require.NoError(t, err)
		assert.True(t, got.Equal(instant), "legacy round trip for %v", instant)
	}
}
