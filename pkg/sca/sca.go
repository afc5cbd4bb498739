package sca

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Record is one named scalar measurement extracted from a result file.
// It is immutable after parse; Value may be NaN either because the file
// declared it or because the value token did not parse as a number.
type Record struct {
	Module string // hierarchical module path, e.g. net.ue[3].app[0]
	Name   string // metric name as declared, e.g. cbrReceivedThroughput:mean
	Value  float64
	Unit   string // trailing unit token, "" when absent
}

// Line re-serializes the record in the scalar-line grammar. Tokens containing
// whitespace are double-quoted.
func (r Record) Line() string {
	v := strconv.FormatFloat(r.Value, 'g', -1, 64)
	s := fmt.Sprintf("scalar %s %s %s", quoteToken(r.Module), quoteToken(r.Name), v)
	if r.Unit != "" {
		s += " " + r.Unit
	}
	return s
}

// Attributes holds the per-file run metadata declared via attr lines
// (repetition index, config name, run id, ...).
type Attributes map[string]string

// Result is the outcome of parsing one file.
type Result struct {
	Records []Record
	Attrs   Attributes
	// BadValues counts scalar lines whose value token did not parse as a
	// number (their records are emitted with NaN).
	BadValues int
}

// ParseFile opens and parses one .sca file. A nonexistent or unreadable file
// is an error; malformed content inside the file is not.
func ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sca: open %s: %w", path, err)
	}
	defer f.Close()
	return ParseReader(f)
}

// ParseReader parses scalar-result text from r. Lines matching neither
// grammar are skipped. Invalid bytes within a line do not abort parsing.
func ParseReader(r io.Reader) (*Result, error) {
	if r == nil {
		return nil, ErrNilReader
	}

	res := &Result{Attrs: Attributes{}}

	sc := bufio.NewScanner(r)
	// Result files routinely carry kilobyte-long config dump lines.
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "scalar "):
			if rec, ok, bad := parseScalarLine(line); ok {
				res.Records = append(res.Records, rec)
				if bad {
					res.BadValues++
				}
			}
		case strings.HasPrefix(line, "attr "):
			if k, v, ok := parseAttrLine(line); ok {
				res.Attrs[k] = v
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("sca: read: %w", err)
	}
	return res, nil
}

// parseScalarLine decodes `scalar <module> <name> <value> [unit]`.
// ok is false when module, name, or value tokens are missing; bad is true
// when the value token was present but not numeric (Value is NaN then).
func parseScalarLine(line string) (rec Record, ok bool, bad bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "scalar"))

	module, rest := nextToken(rest)
	name, rest := nextToken(rest)
	val, rest := nextToken(rest)
	unit, _ := nextToken(rest)

	if module == "" || name == "" || val == "" {
		return Record{}, false, false
	}

	rec = Record{
		Module: unquote(module),
		Name:   unquote(name),
		Unit:   unit,
	}
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		// Keep the record so downstream counts by name stay accurate.
		rec.Value = math.NaN()
		return rec, true, true
	}
	rec.Value = v
	return rec, true, false
}

// parseAttrLine decodes `attr <key> <value...>`. The value is the whole
// remainder of the line, unquoted if wrapped.
func parseAttrLine(line string) (key, value string, ok bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "attr"))
	key, rest = nextToken(rest)
	if key == "" {
		return "", "", false
	}
	return key, unquote(strings.TrimSpace(rest)), true
}

// nextToken splits off the leading whitespace-delimited token. A token that
// starts with a quote runs to the matching close quote, so quoted module
// paths and metric names may contain spaces.
func nextToken(s string) (tok, rest string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	if q := s[0]; q == '"' || q == '\'' {
		if i := strings.IndexByte(s[1:], q); i >= 0 {
			return s[:i+2], strings.TrimSpace(s[i+2:])
		}
		// unterminated quote: treat as a plain token
	}
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:])
	}
	return s, ""
}

// unquote strips one layer of matching single or double quotes. Applying it
// to an already-bare token is a no-op.
func unquote(s string) string {
	if len(s) >= 2 {
		if q := s[0]; (q == '"' || q == '\'') && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func quoteToken(s string) string {
	if strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}
