package internal

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// Metadata is the read-only view of the tags this tool cares about.
// Absent values are nil.
type Metadata struct {
	CaptureTime *time.Time  // EXIF DateTimeOriginal
	GPSTime     *time.Time  // GPSDateStamp + GPSTimeStamp, UTC
	Coordinate  *Coordinate // unrounded
	HasGPS      bool        // a GPS IFD is present, usable or not
}

// MetadataReader extracts Metadata from a JPEG file.
type MetadataReader interface {
	ReadMetadata(path string) (*Metadata, error)
}

// ExifReader is the MetadataReader backed by goexif.
type ExifReader struct{}

func (ExifReader) ReadMetadata(path string) (*Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return nil, fmt.Errorf("%w: %v", ErrNoExif, err)
	}

	md := &Metadata{}
	if t, err := getExifDateOriginal(x); err == nil {
		md.CaptureTime = &t
	}

	if _, err := x.Get(exif.GPSInfoIFDPointer); err == nil {
		md.HasGPS = true
	}
	if !md.HasGPS {
		return md, nil
	}

	if lat, long, err := x.LatLong(); err == nil {
		md.Coordinate = &Coordinate{Latitude: lat, Longitude: long}
	}
	if t, err := getGPSTime(x); err == nil {
		md.GPSTime = &t
	}

	return md, nil
}

// getExifDateOriginal extracts the DateTimeOriginal from EXIF metadata
func getExifDateOriginal(x *exif.Exif) (time.Time, error) {
	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}, err
	}

	dateStr, err := tag.StringVal()
	if err != nil {
		return time.Time{}, err
	}

	return parseExifTime(dateStr)
}

// getGPSTime combines GPSDateStamp and GPSTimeStamp. Both are required.
func getGPSTime(x *exif.Exif) (time.Time, error) {
	dateTag, err := x.Get(exif.GPSDateStamp)
	if err != nil {
		return time.Time{}, err
	}
	timeTag, err := x.Get(exif.GPSTimeStamp)
	if err != nil {
		return time.Time{}, err
	}

	dateStr, err := dateTag.StringVal()
	if err != nil {
		return time.Time{}, err
	}
	day, err := time.Parse(gpsDateLayout, strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, err
	}

	var parts [3]float64
	for i := range parts {
		parts[i], err = ratFloat(timeTag, i)
		if err != nil {
			return time.Time{}, err
		}
	}

	offset := time.Duration(parts[0]*float64(time.Hour)) +
		time.Duration(parts[1]*float64(time.Minute)) +
		time.Duration(parts[2]*float64(time.Second))
	return day.Add(offset), nil
}

func ratFloat(tag *tiff.Tag, i int) (float64, error) {
	num, den, err := tag.Rat2(i)
	if err != nil {
		return 0, err
	}
	if den == 0 {
		return 0, fmt.Errorf("zero denominator in %s", tag.String())
	}
	return float64(num) / float64(den), nil
}
