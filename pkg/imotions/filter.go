package imotions

// Filter selects samples by device and sample kind. An empty field matches
// any value; otherwise matching is exact and case-sensitive.
type Filter struct {
	DeviceName string
	SampleName string
}

// DefaultFilter accepts EyeData samples from any device.
func DefaultFilter() Filter {
	return Filter{SampleName: EyeDataSample}
}

// Match reports whether r passes the filter.
func (f Filter) Match(r *Record) bool {
	if f.DeviceName != "" && r.DeviceName != f.DeviceName {
		return false
	}
	if f.SampleName != "" && r.SampleName != f.SampleName {
		return false
	}
	return true
}
