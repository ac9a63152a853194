// SPDX-License-Identifier: EPL-2.0

package shard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	numericRange = regexp.MustCompile(`^(-?\d+)\.\.(-?\d+)(?:\.\.(-?\d+))?$`)
	letterRange  = regexp.MustCompile(`^([A-Za-z])\.\.([A-Za-z])(?:\.\.(-?\d+))?$`)
)

// Expand performs bash style brace expansion on pattern: comma lists
// ("{a,b}"), numeric ranges ("{000..127}", zero padding kept, optional step)
// and letter ranges ("{a..e}"). Braces nest. A brace group that is neither
// a list nor a range is kept literally.
func Expand(pattern string) ([]string, error) {
	depth := 0
	for i, r := range pattern {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: stray '}' at %d in %q", ErrUnbalancedBraces, i, pattern)
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnbalancedBraces, pattern)
	}

	return expand(pattern), nil
}

// Resolve expands every pattern and concatenates the results in order.
func Resolve(patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		expanded, err := Expand(p)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

func expand(s string) []string {
	open := strings.IndexByte(s, '{')
	if open < 0 {
		return []string{s}
	}
	end := closing(s, open)
	prefix, body, suffix := s[:open], s[open+1:end], s[end+1:]

	suffixes := expand(suffix)

	alts, ok := alternatives(body)
	if !ok {
		// Not expandable itself; inner groups still are.
		var out []string
		for _, inner := range expand(body) {
			for _, sfx := range suffixes {
				out = append(out, prefix+"{"+inner+"}"+sfx)
			}
		}
		return out
	}

	var out []string
	for _, alt := range alts {
		for _, a := range expand(alt) {
			for _, sfx := range suffixes {
				out = append(out, prefix+a+sfx)
			}
		}
	}
	return out
}

// closing returns the index of the brace matching s[open].
func closing(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(s) - 1
}

func alternatives(body string) ([]string, bool) {
	if parts := splitTopLevel(body); len(parts) > 1 {
		return parts, true
	}
	if m := numericRange.FindStringSubmatch(body); m != nil {
		return numbers(m[1], m[2], m[3]), true
	}
	if m := letterRange.FindStringSubmatch(body); m != nil {
		return letters(m[1][0], m[2][0], m[3]), true
	}
	return nil, false
}

func splitTopLevel(body string) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, body[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, body[last:])
}

func stepOf(raw string) int {
	step, err := strconv.Atoi(raw)
	if err != nil || step == 0 {
		return 1
	}
	if step < 0 {
		return -step
	}
	return step
}

func padded(raw string) bool {
	raw = strings.TrimPrefix(raw, "-")
	return len(raw) > 1 && raw[0] == '0'
}

func numbers(startRaw, endRaw, stepRaw string) []string {
	start, _ := strconv.Atoi(startRaw)
	end, _ := strconv.Atoi(endRaw)
	step := stepOf(stepRaw)

	width := 0
	if padded(startRaw) || padded(endRaw) {
		width = max(len(startRaw), len(endRaw))
	}

	var out []string
	emit := func(v int) {
		if width > 0 {
			out = append(out, fmt.Sprintf("%0*d", width, v))
		} else {
			out = append(out, strconv.Itoa(v))
		}
	}
	if start <= end {
		for v := start; v <= end; v += step {
			emit(v)
		}
	} else {
		for v := start; v >= end; v -= step {
			emit(v)
		}
	}
	return out
}

func letters(start, end byte, stepRaw string) []string {
	step := stepOf(stepRaw)

	var out []string
	if start <= end {
		for c := int(start); c <= int(end); c += step {
			out = append(out, string(rune(c)))
		}
	} else {
		for c := int(start); c >= int(end); c -= step {
			out = append(out, string(rune(c)))
		}
	}
	return out
}
