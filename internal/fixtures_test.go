package internal

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	exifv3 "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	"github.com/stretchr/testify/require"
)

// photoTags describes the EXIF content of a fixture. Nil fields are left out.
type photoTags struct {
	Captured   *time.Time
	GPS        *Coordinate
	GPSTime    *time.Time
	GPSDirOnly bool // GPS IFD with only GPSVersionID
}

func at(s string) *time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func coord(lat, lon float64) *Coordinate {
	return &Coordinate{Latitude: lat, Longitude: lon}
}

// createTestImage creates a test image with a simple gradient pattern
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / width),
				G: uint8((y * 255) / height),
				B: uint8((x + y) % 255),
				A: 255,
			})
		}
	}
	return img
}

func encodeTestJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, createTestImage(64, 48), &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

// writePlainJPEG writes a JPEG without any EXIF segment.
func writePlainJPEG(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, encodeTestJPEG(t), 0644))
}

// writePhoto writes a JPEG carrying the given tags.
func writePhoto(t *testing.T, path string, tags photoTags) {
	t.Helper()

	ec, err := jpegstructure.NewJpegMediaParser().ParseBytes(encodeTestJPEG(t))
	require.NoError(t, err)
	sl := ec.(*jpegstructure.SegmentList)

	rootIb, err := newRootIfdBuilder()
	require.NoError(t, err)

	if tags.Captured != nil {
		exifIb, err := exifv3.GetOrCreateIbFromRootIb(rootIb, "IFD/Exif")
		require.NoError(t, err)
		require.NoError(t, exifIb.SetStandardWithName("DateTimeOriginal", tags.Captured.Format(exifTimeLayout)))
	}

	if tags.GPS != nil || tags.GPSTime != nil || tags.GPSDirOnly {
		gpsIb, err := exifv3.GetOrCreateIbFromRootIb(rootIb, gpsIfdPath)
		require.NoError(t, err)
		require.NoError(t, gpsIb.SetStandardWithName("GPSVersionID", gpsVersion))

		if tags.GPS != nil {
			require.NoError(t, setGPSCoordinate(rootIb, *tags.GPS))
		}
		if tags.GPSTime != nil {
			g := tags.GPSTime.UTC()
			require.NoError(t, gpsIb.SetStandardWithName("GPSDateStamp", g.Format(gpsDateLayout)))
			require.NoError(t, gpsIb.SetStandardWithName("GPSTimeStamp", []exifcommon.Rational{
				{Numerator: uint32(g.Hour()), Denominator: 1},
				{Numerator: uint32(g.Minute()), Denominator: 1},
				{Numerator: uint32(g.Second()), Denominator: 1},
			}))
		}
	}

	require.NoError(t, sl.SetExif(rootIb))

	var out bytes.Buffer
	require.NoError(t, sl.Write(&out))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0644))
}

func readMetadata(t *testing.T, path string) *Metadata {
	t.Helper()
	md, err := ExifReader{}.ReadMetadata(path)
	require.NoError(t, err)
	return md
}

func modTime(t *testing.T, path string) time.Time {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.ModTime()
}
