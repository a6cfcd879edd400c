package internal

import "time"

// GPSPayload is the GPS reading a tagged photo was built from. Only the
// writer side looks inside it.
type GPSPayload struct {
	raw     Coordinate
	gpsTime *time.Time
}

// Raw is the coordinate before rounding.
func (p GPSPayload) Raw() Coordinate { return p.raw }

// GPSTime is the GPS timestamp, if the photo had one.
func (p GPSPayload) GPSTime() (time.Time, bool) {
	if p.gpsTime == nil {
		return time.Time{}, false
	}
	return *p.gpsTime, true
}

// TaggedPhoto is a photo with a usable GPS fix. Coordinate is rounded; the
// raw fix it came from is never (0,0).
type TaggedPhoto struct {
	Path       string
	Instant    time.Time
	Coordinate Coordinate
	GPS        GPSPayload
}

// UntaggedPhoto is a photo without a GPS directory but with an EXIF capture
// time.
type UntaggedPhoto struct {
	Path    string
	Instant time.Time
	Handle  *FileAttributeHandle
}

// Match pairs an untagged photo with the location it inherits.
type Match struct {
	Photo      UntaggedPhoto
	Coordinate Coordinate
	Source     TaggedPhoto
	Minutes    int64 // absolute distance in time
}
