package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatWibTimestamp(t *testing.T) {
	ts := time.Date(2025, 1, 2, 20, 30, 0, 0, time.UTC)

	assert.Equal(t, "2025-01-03T03:30:00.000+07:00", FormatWibTimestamp(ts))
}

func TestConvertDateTimeToHumanReadableFormat(t *testing.T) {
	ts := time.Date(2025, 1, 2, 1, 5, 0, 0, time.UTC)

	assert.Equal(t, "02 January 2025, 08:05 WIB", ConvertDateTimeToHumanReadableFormat(ts))
}
