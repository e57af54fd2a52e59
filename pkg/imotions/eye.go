package imotions

// Eye selects one side of a binocular sample.
type Eye int

const (
	Left Eye = iota
	Right
)

// Eyes lists both sides in output order.
var Eyes = [...]Eye{Left, Right}

// String returns the side as it appears in field names ("Left", "Right").
func (e Eye) String() string {
	switch e {
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return "Unknown"
	}
}

// GazeXField returns the name of the horizontal gaze field for e.
func (e Eye) GazeXField() string { return "Gaze" + e.String() + "X" }

// GazeYField returns the name of the vertical gaze field for e.
func (e Eye) GazeYField() string { return "Gaze" + e.String() + "Y" }

// PupilField returns the name of the pupil diameter field for e.
func (e Eye) PupilField() string { return "Pupil" + e.String() }

// EyeReading is the raw gaze point and pupil diameter for one eye.
type EyeReading struct {
	GazeX Number
	GazeY Number
	Pupil Number
}

// EyeData holds the numeric fields of an EyeData sample. GazeTime is the only
// optional one.
type EyeData struct {
	gazeTime    Number
	hasGazeTime bool
	eyes        [len(Eyes)]EyeReading
}

// NewEyeData assembles EyeData from per-eye readings and a gaze time.
func NewEyeData(gazeTime Number, left, right EyeReading) *EyeData {
	d := &EyeData{gazeTime: gazeTime, hasGazeTime: true}
	d.eyes[Left] = left
	d.eyes[Right] = right
	return d
}

// Eye returns the reading for one side.
func (d *EyeData) Eye(e Eye) EyeReading {
	return d.eyes[e]
}

// GazeTime returns the device timestamp and whether the sample carried one.
func (d *EyeData) GazeTime() (Number, bool) {
	return d.gazeTime, d.hasGazeTime
}

// EyeData decodes the gaze fields of the record. Every gaze and pupil field
// must be present; the first missing one is reported as a *MissingFieldError.
// A missing or non-numeric GazeTime is left unset.
func (r *Record) EyeData() (*EyeData, error) {
	d := &EyeData{}

	for _, e := range Eyes {
		var reading EyeReading
		var err error

		if reading.GazeX, err = r.Number(e.GazeXField()); err != nil {
			return nil, err
		}
		if reading.GazeY, err = r.Number(e.GazeYField()); err != nil {
			return nil, err
		}
		if reading.Pupil, err = r.Number(e.PupilField()); err != nil {
			return nil, err
		}

		d.eyes[e] = reading
	}

	if t, err := r.Number(FieldGazeTime); err == nil {
		d.gazeTime, d.hasGazeTime = t, true
	}

	return d, nil
}
