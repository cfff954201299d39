package access

// UnrecognizedID is reported by the vision sensor for a face it sees but cannot match.
const UnrecognizedID = 0

// Detection is one face observation reported during a sampling interval.
type Detection struct {
	// ID is 0 for an unrecognized face and the learned class (>0) otherwise.
	ID int
}

// Unrecognized reports whether the face is present but unknown to the sensor.
func (d Detection) Unrecognized() bool {
	return d.ID == UnrecognizedID
}

// HasUnrecognized reports whether any detection is an unrecognized face.
func HasUnrecognized(detections []Detection) bool {
	for _, d := range detections {
		if d.Unrecognized() {
			return true
		}
	}

	return false
}
