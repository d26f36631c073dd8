package formats

import "strings"

// ExpressionRef names one expression file declared in a model bundle.
type ExpressionRef struct {
	Name string
	File string
}

// ModelBundle lists the files referenced by a model3.json definition.
// All paths are relative to the bundle's directory.
type ModelBundle struct {
	MocPath        string
	TexturePaths   []string
	IdleMotionPath string              // first file of the Idle motion group
	MotionGroups   map[string][]string // group name -> motion file paths
	Expressions    []ExpressionRef
	PhysicsPath    string
	PosePath       string
}

// ParseModel3 parses a model3.json definition. Missing sections leave
// the corresponding fields empty; there is no failure mode beyond an
// empty bundle.
func ParseModel3(j string) ModelBundle {
	b := ModelBundle{MotionGroups: make(map[string][]string)}

	fr := findKey(j, "FileReferences", 0)
	if fr >= 0 {
		if p := findKey(j, "Moc", fr); p >= 0 {
			b.MocPath = extractString(j, p)
		}
		if p := findKey(j, "Textures", fr); p >= 0 {
			b.TexturePaths = extractStringArray(j, p)
		}
	}

	if p := findKey(j, "Idle", 0); p >= 0 {
		if fp := findKey(j, "File", p); fp >= 0 {
			b.IdleMotionPath = extractString(j, fp)
		}
	}

	parseMotionGroups(j, &b)

	if arr := findArrayStart(j, "Expressions", 0); arr >= 0 {
		for _, obj := range extractObjectArray(j, arr) {
			name, file := "", ""
			if p := findKey(obj, "Name", 0); p >= 0 {
				name = extractString(obj, p)
			}
			if p := findKey(obj, "File", 0); p >= 0 {
				file = extractString(obj, p)
			}
			if name != "" && file != "" {
				b.Expressions = append(b.Expressions, ExpressionRef{Name: name, File: file})
			}
		}
	}

	if p := findKey(j, "Physics", 0); p >= 0 {
		b.PhysicsPath = extractString(j, p)
	}
	if p := findKey(j, "Pose", 0); p >= 0 {
		b.PosePath = extractString(j, p)
	}

	return b
}

// parseMotionGroups scans the Motions object for group names and their
// motion file lists. The files are loaded on demand at playback time,
// not here.
func parseMotionGroups(j string, b *ModelBundle) {
	objStart := findObjectStart(j, "Motions", 0)
	if objStart < 0 {
		return
	}
	motions := extractObject(j, objStart)

	p := 1 // past the opening '{'
	for p < len(motions) {
		qStart := indexByteFrom(motions, '"', p)
		if qStart < 0 {
			break
		}
		qEnd := indexByteFrom(motions, '"', qStart+1)
		if qEnd < 0 {
			break
		}
		group := motions[qStart+1 : qEnd]
		if group == "" {
			// keep API callers from needing to pass empty strings
			group = "Default"
		}

		arrStart := indexByteFrom(motions, '[', qEnd)
		if arrStart < 0 {
			break
		}
		var files []string
		for _, entry := range extractObjectArray(motions, arrStart) {
			if fp := findKey(entry, "File", 0); fp >= 0 {
				if file := extractString(entry, fp); file != "" {
					files = append(files, file)
				}
			}
		}
		if len(files) > 0 {
			b.MotionGroups[group] = files
		}
		p = skipArray(motions, arrStart)
	}
}

func indexByteFrom(s string, c byte, from int) int {
	if from < 0 || from >= len(s) {
		return -1
	}
	i := strings.IndexByte(s[from:], c)
	if i < 0 {
		return -1
	}
	return from + i
}
