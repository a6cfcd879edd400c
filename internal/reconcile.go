package internal

import "time"

// Reconcile picks the authoritative capture instant of a geotagged photo
// from its EXIF and GPS timestamps.
//
// When both are present and differ by a whole number of hours the gap is
// taken to be timezone skew and the EXIF value is kept. Any other gap means
// the camera clock drifted and the GPS time wins. The result is always one of
// the inputs; ok is false only when both are nil.
func Reconcile(exifTime, gpsTime *time.Time) (t time.Time, ok bool) {
	switch {
	case exifTime == nil && gpsTime == nil:
		return time.Time{}, false
	case gpsTime == nil:
		return *exifTime, true
	case exifTime == nil:
		return *gpsTime, true
	}

	if minutesBetween(*gpsTime, *exifTime)%60 == 0 {
		return *exifTime, true
	}
	return *gpsTime, true
}
