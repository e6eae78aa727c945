package utils

import (
	"time"
)

var wibLocation = time.FixedZone("WIB", 7*60*60)

func ConvertDateTimeToHumanReadableFormat(t time.Time) string {
	return t.In(wibLocation).Format("02 January 2006, 15:04 WIB")
}

// FormatWibTimestamp renders t as RFC3339 with a +07:00 offset, the format the
// point of sale expects for client_created_at.
func FormatWibTimestamp(t time.Time) string {
	return t.In(wibLocation).Format("2006-01-02T15:04:05.000-07:00")
}
