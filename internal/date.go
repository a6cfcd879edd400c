package internal

import (
	"os"
	"strings"
	"time"
)

// exifTimeLayout is the layout of DateTimeOriginal and friends.
const exifTimeLayout = "2006:01:02 15:04:05"

// gpsDateLayout is the layout of GPSDateStamp.
const gpsDateLayout = "2006:01:02"

// parseExifTime parses an EXIF ASCII timestamp. EXIF carries no zone, so the
// value is read as UTC.
func parseExifTime(s string) (time.Time, error) {
	return time.Parse(exifTimeLayout, strings.TrimSpace(strings.TrimRight(s, "\x00")))
}

// minutesBetween returns the whole minutes from a to b, truncated toward zero.
func minutesBetween(a, b time.Time) int64 {
	return int64(b.Sub(a) / time.Minute)
}

func absMinutes(m int64) int64 {
	if m < 0 {
		return -m
	}
	return m
}

// getFileModTime fallback to file modification time
func getFileModTime(path string) (time.Time, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}
