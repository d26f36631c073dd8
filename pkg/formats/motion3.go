package formats

// Keyframe is one (time, value) sample of a motion curve.
type Keyframe struct {
	Time  float32
	Value float32
}

// Curve animates a single model parameter over time.
type Curve struct {
	ParamID   string
	Keyframes []Keyframe
}

// Motion is a parsed motion3.json clip.
type Motion struct {
	Duration    float32
	Loop        bool
	FadeInTime  float32
	FadeOutTime float32
	Curves      []Curve
}

// Segment type tags in the Segments number stream.
const (
	segmentLinear = 0
	segmentBezier = 1
)

// ParseMotion3 parses a motion3.json clip.
//
// Each curve's Segments array starts with the first keyframe's time and
// value, then repeats a tagged segment: tag 0 (linear) carries two more
// numbers, tag 1 (bezier) carries six of which only the final time/value
// endpoint is kept. Playback interpolates linearly between endpoints, so
// the interior bezier control points are dropped. An unknown tag is
// treated as linear; truncated data keeps the keyframes collected so far.
func ParseMotion3(j string) Motion {
	m := Motion{
		Duration:    4,
		Loop:        true,
		FadeInTime:  0.5,
		FadeOutTime: 0.5,
	}

	if p := findKey(j, "Duration", 0); p >= 0 {
		m.Duration = readNumber(j, p)
	}
	if p := findKey(j, "Loop", 0); p >= 0 {
		m.Loop = readBool(j, p)
	}
	if p := findKey(j, "FadeInTime", 0); p >= 0 {
		m.FadeInTime = readNumber(j, p)
	}
	if p := findKey(j, "FadeOutTime", 0); p >= 0 {
		m.FadeOutTime = readNumber(j, p)
	}

	arr := findArrayStart(j, "Curves", 0)
	if arr < 0 {
		return m
	}
	for _, obj := range extractObjectArray(j, arr) {
		tp := findKey(obj, "Target", 0)
		if tp < 0 || extractString(obj, tp) != "Parameter" {
			continue
		}
		ip := findKey(obj, "Id", 0)
		if ip < 0 {
			continue
		}
		paramID := extractString(obj, ip)

		segArr := findArrayStart(obj, "Segments", 0)
		if segArr < 0 {
			continue
		}
		curve := Curve{
			ParamID:   paramID,
			Keyframes: decodeSegments(scanNumberList(obj, segArr)),
		}
		if len(curve.Keyframes) > 0 {
			m.Curves = append(m.Curves, curve)
		}
	}

	return m
}

// decodeSegments turns the raw Segments number stream into keyframes.
func decodeSegments(nums []float32) []Keyframe {
	if len(nums) < 2 {
		return nil
	}
	keys := []Keyframe{{Time: nums[0], Value: nums[1]}}
	i := 2
	for i < len(nums) {
		switch tag := int(nums[i]); {
		case tag == segmentLinear && i+2 < len(nums):
			keys = append(keys, Keyframe{Time: nums[i+1], Value: nums[i+2]})
			i += 3
		case tag == segmentBezier && i+6 < len(nums):
			keys = append(keys, Keyframe{Time: nums[i+5], Value: nums[i+6]})
			i += 7
		case i+2 < len(nums):
			keys = append(keys, Keyframe{Time: nums[i+1], Value: nums[i+2]})
			i += 3
		default:
			return keys
		}
	}
	return keys
}

// Evaluate samples the curve at time t. Times outside the keyframe range
// clamp to the boundary values; inside, adjacent keyframes are linearly
// interpolated.
func (c *Curve) Evaluate(t float32) float32 {
	if len(c.Keyframes) == 0 {
		return 0
	}
	if t <= c.Keyframes[0].Time {
		return c.Keyframes[0].Value
	}
	last := c.Keyframes[len(c.Keyframes)-1]
	if t >= last.Time {
		return last.Value
	}
	for i := 1; i < len(c.Keyframes); i++ {
		if t <= c.Keyframes[i].Time {
			k0, k1 := c.Keyframes[i-1], c.Keyframes[i]
			frac := float32(0)
			if k1.Time > k0.Time {
				frac = (t - k0.Time) / (k1.Time - k0.Time)
			}
			return k0.Value + (k1.Value-k0.Value)*frac
		}
	}
	return last.Value
}
