package internal

import (
	"errors"
	"fmt"
	"io"
	"math"

	exifv3 "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
)

// gpsIfdPath is the fully qualified path of the GPS IFD under IFD0.
const gpsIfdPath = "IFD/GPSInfo"

// gpsVersion is written alongside the coordinate, as EXIF 2.3 requires.
var gpsVersion = []byte{2, 3, 0, 0}

// GeotagWriter stores a coordinate in a JPEG's GPS tags.
type GeotagWriter interface {
	WriteGeotag(path string, c Coordinate) error
}

// NativeWriter patches the EXIF segment of a JPEG in process. Every other
// segment, including the scan data, is written back byte for byte.
type NativeWriter struct {
	TempSuffix string

	encode func(w io.Writer, sl *jpegstructure.SegmentList, rootIb *exifv3.IfdBuilder) error
}

func NewNativeWriter(tempSuffix string) *NativeWriter {
	return &NativeWriter{TempSuffix: tempSuffix}
}

func (w *NativeWriter) WriteGeotag(path string, c Coordinate) error {
	sl, err := parseSegments(path)
	if err != nil {
		return fmt.Errorf("parse jpeg segments: %w", err)
	}

	rootIb, err := exifBuilderFor(sl)
	if err != nil {
		return fmt.Errorf("derive exif tag set: %w", err)
	}

	if err := setGPSCoordinate(rootIb, c); err != nil {
		return fmt.Errorf("set gps tags: %w", err)
	}

	encode := w.encode
	if encode == nil {
		encode = encodeSegments
	}
	suffix := w.TempSuffix
	if suffix == "" {
		suffix = DefaultTempSuffix
	}

	return replaceFileAtomic(path, suffix, func(out io.Writer) error {
		if err := encode(out, sl, rootIb); err != nil {
			return fmt.Errorf("encode jpeg: %w", err)
		}
		return nil
	})
}

func parseSegments(path string) (*jpegstructure.SegmentList, error) {
	ec, err := jpegstructure.NewJpegMediaParser().ParseFile(path)
	if err != nil {
		return nil, err
	}
	sl, ok := ec.(*jpegstructure.SegmentList)
	if !ok {
		return nil, fmt.Errorf("unexpected media context %T", ec)
	}
	return sl, nil
}

// exifBuilderFor clones the existing EXIF tree, or starts an empty one when
// the file has none.
func exifBuilderFor(sl *jpegstructure.SegmentList) (*exifv3.IfdBuilder, error) {
	if _, _, err := sl.FindExif(); err != nil {
		if errors.Is(err, exifv3.ErrNoExif) {
			return newRootIfdBuilder()
		}
		return nil, err
	}
	return sl.ConstructExifBuilder()
}

func newRootIfdBuilder() (*exifv3.IfdBuilder, error) {
	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return nil, err
	}
	ti := exifv3.NewTagIndex()
	return exifv3.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder), nil
}

// setGPSCoordinate sets or overwrites the GPS position tags.
func setGPSCoordinate(rootIb *exifv3.IfdBuilder, c Coordinate) error {
	gpsIb, err := exifv3.GetOrCreateIbFromRootIb(rootIb, gpsIfdPath)
	if err != nil {
		return err
	}

	latRef, lonRef := "N", "E"
	if c.Latitude < 0 {
		latRef = "S"
	}
	if c.Longitude < 0 {
		lonRef = "W"
	}

	tags := []struct {
		name  string
		value interface{}
	}{
		{"GPSVersionID", gpsVersion},
		{"GPSLatitudeRef", latRef},
		{"GPSLatitude", degreesToRationals(c.Latitude)},
		{"GPSLongitudeRef", lonRef},
		{"GPSLongitude", degreesToRationals(c.Longitude)},
	}
	for _, tag := range tags {
		if err := gpsIb.SetStandardWithName(tag.name, tag.value); err != nil {
			return fmt.Errorf("%s: %w", tag.name, err)
		}
	}
	return nil
}

// secondsDenominator keeps 1/10000 of an arcsecond, about 3 mm.
const secondsDenominator = 10000

// degreesToRationals converts |v| to degrees, minutes and seconds.
func degreesToRationals(v float64) []exifcommon.Rational {
	const perDegree = 3600 * secondsDenominator
	const perMinute = 60 * secondsDenominator

	total := uint64(math.Round(math.Abs(v) * perDegree))
	deg := total / perDegree
	rem := total % perDegree

	return []exifcommon.Rational{
		{Numerator: uint32(deg), Denominator: 1},
		{Numerator: uint32(rem / perMinute), Denominator: 1},
		{Numerator: uint32(rem % perMinute), Denominator: secondsDenominator},
	}
}

func encodeSegments(w io.Writer, sl *jpegstructure.SegmentList, rootIb *exifv3.IfdBuilder) error {
	if err := sl.SetExif(rootIb); err != nil {
		return err
	}
	return sl.Write(w)
}

// DryRunWriter only logs what would be written.
type DryRunWriter struct {
	Log *Logger
}

func (w DryRunWriter) WriteGeotag(path string, c Coordinate) error {
	w.Log.Info().Str("path", path).Stringer("coordinate", c).Msg("[dry-run] would write geotag")
	return nil
}
