package internal

import (
	"fmt"
	"os"

	"github.com/barasher/go-exiftool"
)

// ExifToolWriter delegates the tag rewrite to a long-running exiftool
// process. exiftool works on a temporary copy, which is then renamed over
// the original, so a failed write never touches the photo.
type ExifToolWriter struct {
	TempSuffix string

	et *exiftool.Exiftool
}

// NewExifToolWriter starts exiftool. binary may be empty to use $PATH.
func NewExifToolWriter(binary, tempSuffix string) (*ExifToolWriter, error) {
	var opts []func(*exiftool.Exiftool) error
	if binary != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(binary))
	}

	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		return nil, fmt.Errorf("start exiftool: %w", err)
	}
	if tempSuffix == "" {
		tempSuffix = DefaultTempSuffix
	}
	return &ExifToolWriter{TempSuffix: tempSuffix, et: et}, nil
}

func (w *ExifToolWriter) WriteGeotag(path string, c Coordinate) error {
	tmp, err := copyToSiblingTemp(path, w.TempSuffix)
	if err != nil {
		return fmt.Errorf("copy to temp file: %w", err)
	}

	fm := exiftool.EmptyFileMetadata()
	fm.File = tmp
	// Signed values on the Ref tags let exiftool pick N/S and E/W.
	fm.SetFloat("GPSLatitude", c.Latitude)
	fm.SetFloat("GPSLatitudeRef", c.Latitude)
	fm.SetFloat("GPSLongitude", c.Longitude)
	fm.SetFloat("GPSLongitudeRef", c.Longitude)

	batch := []exiftool.FileMetadata{fm}
	w.et.WriteMetadata(batch)
	if batch[0].Err != nil {
		os.Remove(tmp)
		return fmt.Errorf("exiftool write: %w", batch[0].Err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace original: %w", err)
	}
	return nil
}

func (w *ExifToolWriter) Close() error {
	return w.et.Close()
}
