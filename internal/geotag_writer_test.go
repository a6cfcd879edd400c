package internal

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	exifv3 "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePixels(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, _, err := image.Decode(f)
	require.NoError(t, err)
	return img
}

// nonExifSegments returns marker and payload of every segment except EXIF.
func nonExifSegments(t *testing.T, path string) [][]byte {
	t.Helper()
	sl, err := parseSegments(path)
	require.NoError(t, err)

	var out [][]byte
	for _, s := range sl.Segments() {
		if s.IsExif() {
			continue
		}
		out = append(out, append([]byte{s.MarkerId}, s.Data...))
	}
	return out
}

func TestNativeWriter_AddsGPSToUntagged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.jpg")
	writePhoto(t, path, photoTags{Captured: at("2024-05-01 10:30")})
	pixels := decodePixels(t, path)
	segments := nonExifSegments(t, path)

	require.NoError(t, NewNativeWriter(".tmp").WriteGeotag(path, Coordinate{Latitude: 51.5, Longitude: -0.1}))

	md := readMetadata(t, path)
	assert.True(t, md.HasGPS)
	require.NotNil(t, md.Coordinate)
	assert.InDelta(t, 51.5, md.Coordinate.Latitude, 1e-6)
	assert.InDelta(t, -0.1, md.Coordinate.Longitude, 1e-6)

	// Other tags survive the rewrite.
	require.NotNil(t, md.CaptureTime)
	assert.True(t, at("2024-05-01 10:30").Equal(*md.CaptureTime))

	// Image data is untouched.
	assert.Equal(t, pixels, decodePixels(t, path))
	assert.Equal(t, segments, nonExifSegments(t, path))

	assert.Equal(t, []string{"b.jpg"}, dirNames(t, filepath.Dir(path)), "temp file should be gone")
}

func TestNativeWriter_Hemispheres(t *testing.T) {
	testCases := []Coordinate{
		{Latitude: -33.8568, Longitude: 151.2153},
		{Latitude: 40.6892, Longitude: -74.0445},
		{Latitude: -22.9519, Longitude: -43.2105},
		{Latitude: 0.0001, Longitude: 0},
	}

	for _, c := range testCases {
		t.Run(c.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "p.jpg")
			writePhoto(t, path, photoTags{Captured: at("2024-05-01 10:30")})

			require.NoError(t, NewNativeWriter("").WriteGeotag(path, c))

			md := readMetadata(t, path)
			require.NotNil(t, md.Coordinate)
			assert.InDelta(t, c.Latitude, md.Coordinate.Latitude, 1e-6)
			assert.InDelta(t, c.Longitude, md.Coordinate.Longitude, 1e-6)
		})
	}
}

func TestNativeWriter_FileWithoutExif(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.jpg")
	writePlainJPEG(t, path)
	pixels := decodePixels(t, path)
	segments := nonExifSegments(t, path)

	require.NoError(t, NewNativeWriter(".tmp").WriteGeotag(path, Coordinate{Latitude: 10, Longitude: 20}))

	md := readMetadata(t, path)
	require.NotNil(t, md.Coordinate)
	assert.InDelta(t, 10.0, md.Coordinate.Latitude, 1e-6)
	assert.InDelta(t, 20.0, md.Coordinate.Longitude, 1e-6)
	assert.Equal(t, pixels, decodePixels(t, path))
	assert.Equal(t, segments, nonExifSegments(t, path))
}

func TestNativeWriter_OverwritesExistingFix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.jpg")
	writePhoto(t, path, photoTags{Captured: at("2024-05-01 10:30"), GPS: coord(1, 1)})

	require.NoError(t, NewNativeWriter(".tmp").WriteGeotag(path, Coordinate{Latitude: -5.5, Longitude: 7.25}))

	md := readMetadata(t, path)
	require.NotNil(t, md.Coordinate)
	assert.InDelta(t, -5.5, md.Coordinate.Latitude, 1e-6)
	assert.InDelta(t, 7.25, md.Coordinate.Longitude, 1e-6)
}

func TestNativeWriter_FailedEncodeLeavesOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.jpg")
	writePhoto(t, path, photoTags{Captured: at("2024-05-01 10:30")})
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	boom := errors.New("disk went away")
	w := NewNativeWriter(".tmp")
	w.encode = func(out io.Writer, _ *jpegstructure.SegmentList, _ *exifv3.IfdBuilder) error {
		// Half a file reaches the temp target before the failure.
		out.Write(before[:len(before)/2])
		return boom
	}

	err = w.WriteGeotag(path, Coordinate{Latitude: 1, Longitude: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(before, after), "original must be byte-identical")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must be removed")
	assert.Equal(t, "b.jpg", entries[0].Name())
}

func TestNativeWriter_UsesTempSuffix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "b.jpg")
	writePhoto(t, path, photoTags{Captured: at("2024-05-01 10:30")})

	var during []string
	w := NewNativeWriter(".partial")
	w.encode = func(out io.Writer, sl *jpegstructure.SegmentList, rootIb *exifv3.IfdBuilder) error {
		during = dirNames(t, dir)
		return encodeSegments(out, sl, rootIb)
	}
	require.NoError(t, w.WriteGeotag(path, Coordinate{Latitude: 1, Longitude: 2}))

	require.Len(t, during, 2)
	assert.True(t, strings.HasSuffix(during[1], ".partial"), during[1])
	assert.Equal(t, []string{"b.jpg"}, dirNames(t, dir))
}

func TestNativeWriter_KeepsUserFileWithTempName(t *testing.T) {
	dir, _, b, _ := abcFolder(t)
	userPhoto := b + DefaultTempSuffix
	writePhoto(t, userPhoto, photoTags{Captured: at("2024-05-01 10:31")})
	before, err := os.ReadFile(userPhoto)
	require.NoError(t, err)

	res := runFolder(t, NewPropagator(NewNativeWriter(DefaultTempSuffix), DefaultMatchWindow, NopLogger()), dir)
	assert.Equal(t, 4, res.Scanned)
	assert.Equal(t, 2, res.Assigned)
	assert.Zero(t, res.Errors.Total)

	after, err := os.ReadFile(userPhoto)
	require.NoError(t, err, "user file must not be consumed by the rewrite")
	md := readMetadata(t, userPhoto)
	assert.True(t, md.HasGPS, "the user file is a photo of its own and gets geotagged too")
	assert.NotEqual(t, before, after)
	assert.Len(t, dirNames(t, dir), 4)
}

func TestNativeWriter_GarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jpg")
	garbage := []byte("definitely not a jpeg")
	require.NoError(t, os.WriteFile(path, garbage, 0644))

	err := NewNativeWriter(".tmp").WriteGeotag(path, Coordinate{Latitude: 1, Longitude: 2})
	require.Error(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, garbage, after)
}

func TestDegreesToRationals(t *testing.T) {
	testCases := []struct {
		in   float64
		want []exifcommon.Rational
	}{
		{51.5, []exifcommon.Rational{{Numerator: 51, Denominator: 1}, {Numerator: 30, Denominator: 1}, {Numerator: 0, Denominator: 10000}}},
		{-0.1, []exifcommon.Rational{{Numerator: 0, Denominator: 1}, {Numerator: 6, Denominator: 1}, {Numerator: 0, Denominator: 10000}}},
		{12.3457, []exifcommon.Rational{{Numerator: 12, Denominator: 1}, {Numerator: 20, Denominator: 1}, {Numerator: 445200, Denominator: 10000}}},
		{180, []exifcommon.Rational{{Numerator: 180, Denominator: 1}, {Numerator: 0, Denominator: 1}, {Numerator: 0, Denominator: 10000}}},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, degreesToRationals(tc.in), "%v", tc.in)
	}
}

func TestDryRunWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "b.jpg")
	writePhoto(t, path, photoTags{Captured: at("2024-05-01 10:30")})
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	var logs bytes.Buffer
	w := DryRunWriter{Log: newLogger(&logs, zerolog.DebugLevel)}
	require.NoError(t, w.WriteGeotag(path, Coordinate{Latitude: 1, Longitude: 2}))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Contains(t, logs.String(), "would write geotag")
}
