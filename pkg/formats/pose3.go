package formats

// PosePart is one member of a mutually exclusive part group. Linked
// parts mirror the member's opacity exactly.
type PosePart struct {
	ID      string
	LinkIDs []string
}

// PoseGroup is an ordered set of parts of which only one should be
// visible at a time. The first member is visible by default.
type PoseGroup []PosePart

// ParsePose3 parses a pose3.json file. Groups is an array of arrays of
// {Id, Link} objects; a group needs at least two members to be worth
// crossfading, smaller groups are dropped.
func ParsePose3(j string) []PoseGroup {
	var groups []PoseGroup

	arr := findArrayStart(j, "Groups", 0)
	if arr < 0 {
		return groups
	}

	p := arr + 1
	for p < len(j) {
		for p < len(j) && isSkip(j[p]) {
			p++
		}
		if p >= len(j) || j[p] == ']' {
			break
		}
		if j[p] != '[' {
			p++
			continue
		}

		var group PoseGroup
		for _, obj := range extractObjectArray(j, p) {
			var part PosePart
			if ip := findKey(obj, "Id", 0); ip >= 0 {
				part.ID = extractString(obj, ip)
			}
			if la := findArrayStart(obj, "Link", 0); la >= 0 {
				part.LinkIDs = extractStringArray(obj, la)
			}
			if part.ID != "" {
				group = append(group, part)
			}
		}
		if len(group) >= 2 {
			groups = append(groups, group)
		}

		p = skipArray(j, p)
	}

	return groups
}
