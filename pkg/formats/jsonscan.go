// Package formats parses the JSON asset files of a Live2D model bundle:
// model3.json, motion3.json, exp3.json, physics3.json and pose3.json.
//
// The schemas are fixed and known, so instead of decoding into a generic
// JSON tree the parsers scan the text for the handful of keys they need.
// A missing or malformed key always degrades to a zero value or an empty
// collection; none of the parsers returns an error. Third-party model
// packs are frequently partial or slightly broken, and a bundle without
// a physics file should simply load as a model with no physics.
package formats

import (
	"strconv"
	"strings"
)

// findKey returns the position right after `"key":` (whitespace skipped),
// searching from `from`. Returns -1 if the key is not present.
func findKey(j, key string, from int) int {
	if from < 0 || from > len(j) {
		return -1
	}
	quoted := `"` + key + `"`
	p := strings.Index(j[from:], quoted)
	if p < 0 {
		return -1
	}
	p += from + len(quoted)
	for p < len(j) && (j[p] == ' ' || j[p] == '\t' || j[p] == '\n' || j[p] == '\r' || j[p] == ':') {
		p++
	}
	return p
}

// extractString reads a double-quoted string starting at p.
func extractString(j string, p int) string {
	if p < 0 || p >= len(j) || j[p] != '"' {
		return ""
	}
	end := strings.IndexByte(j[p+1:], '"')
	if end < 0 {
		return ""
	}
	return j[p+1 : p+1+end]
}

// extractStringArray reads a flat array of strings starting at p ('[').
func extractStringArray(j string, p int) []string {
	var out []string
	if p < 0 || p >= len(j) || j[p] != '[' {
		return out
	}
	p++
	for p < len(j) {
		for p < len(j) && isSkip(j[p]) {
			p++
		}
		if p >= len(j) || j[p] == ']' {
			break
		}
		if j[p] != '"' {
			break
		}
		out = append(out, extractString(j, p))
		close := strings.IndexByte(j[p+1:], '"')
		if close < 0 {
			break
		}
		p += close + 2
	}
	return out
}

// extractObjectArray splits an array of objects starting at p ('[') into
// the raw text of each top-level object. Nested objects stay inside
// their parent; nested arrays of objects are not descended into.
func extractObjectArray(j string, p int) []string {
	var out []string
	if p < 0 || p >= len(j) || j[p] != '[' {
		return out
	}
	p++
	for p < len(j) {
		for p < len(j) && isSkip(j[p]) {
			p++
		}
		if p >= len(j) || j[p] == ']' {
			break
		}
		if j[p] == '{' {
			depth := 0
			start := p
			for p < len(j) {
				if j[p] == '{' {
					depth++
				} else if j[p] == '}' {
					depth--
					if depth == 0 {
						p++
						break
					}
				}
				p++
			}
			out = append(out, j[start:p])
		} else {
			p++
		}
	}
	return out
}

// findArrayStart locates `"key": [` and returns the position of the '['.
func findArrayStart(j, key string, from int) int {
	p := findKey(j, key, from)
	if p < 0 {
		return -1
	}
	for p < len(j) && j[p] != '[' {
		p++
	}
	if p >= len(j) {
		return -1
	}
	return p
}

// findObjectStart locates `"key": {` and returns the position of the '{'.
func findObjectStart(j, key string, from int) int {
	p := findKey(j, key, from)
	if p < 0 {
		return -1
	}
	for p < len(j) && j[p] != '{' {
		p++
	}
	if p >= len(j) {
		return -1
	}
	return p
}

// extractObject reads a brace-balanced object starting at p ('{').
func extractObject(j string, p int) string {
	if p < 0 || p >= len(j) || j[p] != '{' {
		return ""
	}
	depth := 0
	start := p
	for p < len(j) {
		if j[p] == '{' {
			depth++
		} else if j[p] == '}' {
			depth--
			if depth == 0 {
				return j[start : p+1]
			}
		}
		p++
	}
	return j[start:]
}

// skipArray returns the position just past the ']' matching the '[' at p.
func skipArray(j string, p int) int {
	depth := 0
	for p < len(j) {
		if j[p] == '[' {
			depth++
		} else if j[p] == ']' {
			depth--
			if depth == 0 {
				return p + 1
			}
		}
		p++
	}
	return len(j)
}

// readNumber parses a decimal number starting at p. The scan is
// locale-independent ('.' decimal separator regardless of environment).
// Malformed input yields 0.
func readNumber(j string, p int) float32 {
	v, _ := scanNumber(j, p)
	return v
}

// scanNumber parses a number at p and returns the value plus the
// position just past its last character. ok==false when nothing at p
// looks like a number, signalled by next==p.
func scanNumber(j string, p int) (float32, int) {
	if p < 0 || p >= len(j) {
		return 0, p
	}
	end := p
	for end < len(j) && isNumberChar(j[end]) {
		end++
	}
	if end == p {
		return 0, p
	}
	v, err := strconv.ParseFloat(j[p:end], 32)
	if err != nil {
		return 0, p
	}
	return float32(v), end
}

// readBool reads a boolean value at p; anything but "true" is false.
func readBool(j string, p int) bool {
	return p >= 0 && strings.HasPrefix(j[p:], "true")
}

// scanNumberList collects every number inside the array starting at
// p ('[') until the matching top-level ']'.
func scanNumberList(j string, p int) []float32 {
	var out []float32
	if p < 0 || p >= len(j) || j[p] != '[' {
		return out
	}
	p++
	for p < len(j) && j[p] != ']' {
		for p < len(j) && isSkip(j[p]) {
			p++
		}
		if p >= len(j) || j[p] == ']' {
			break
		}
		v, next := scanNumber(j, p)
		if next == p {
			p++
			continue
		}
		out = append(out, v)
		p = next
	}
	return out
}

func isSkip(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ','
}

func isNumberChar(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E'
}
