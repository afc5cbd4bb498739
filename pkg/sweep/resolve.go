package sweep

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/fmelo/scasweep/pkg/sca"
	"github.com/fmelo/scasweep/pkg/types"
)

// Default markers recognized in filenames and directory names, e.g.
// "Pot26", "Power46", "26dBm-3.sca".
var (
	defaultMarkerPat = regexp.MustCompile(`(?i)(?:Pot|Potencia|Power)(\d{1,3})`)
	dbmSuffixPat     = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)dBm`)
)

// DefaultAttrKeys are the attribute names checked (case-insensitively) for a
// declared transmit power before any path pattern is consulted.
var DefaultAttrKeys = []string{"power", "txPower", "eNodeBTxPower", "gNBTxPower"}

// Resolver derives the experiment key (transmit power, dBm) for a result
// file. Resolution priority is fixed: declared attribute, then filename,
// then ancestor directory names, nearest first. There is no fallback value;
// an unresolved key stays unresolved.
type Resolver struct {
	attrKeys []string
	marker   *regexp.Regexp
}

// NewResolver builds a resolver. attrKeys defaults to DefaultAttrKeys when
// empty; markerPattern must capture the numeric dBm value in group 1 and
// defaults to the Pot/Potencia/Power prefix convention.
func NewResolver(attrKeys []string, markerPattern string) (*Resolver, error) {
	r := &Resolver{attrKeys: attrKeys, marker: defaultMarkerPat}
	if len(attrKeys) == 0 {
		r.attrKeys = DefaultAttrKeys
	}
	if markerPattern != "" {
		pat, err := regexp.Compile(markerPattern)
		if err != nil {
			return nil, err
		}
		r.marker = pat
	}
	return r, nil
}

// Resolve returns the key and whether it was resolved.
func (r *Resolver) Resolve(path string, attrs sca.Attributes) (types.Dbm, bool) {
	if v, ok := r.fromAttrs(attrs); ok {
		return v, true
	}
	if v, ok := r.fromName(filepath.Base(path)); ok {
		return v, true
	}
	dir := filepath.Dir(path)
	for {
		base := filepath.Base(dir)
		if base == "." || base == string(filepath.Separator) || base == "" {
			break
		}
		if v, ok := r.fromName(base); ok {
			return v, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return 0, false
}

func (r *Resolver) fromAttrs(attrs sca.Attributes) (types.Dbm, bool) {
	for _, want := range r.attrKeys {
		for k, raw := range attrs {
			if !strings.EqualFold(k, want) {
				continue
			}
			// Tolerate values like "26dBm" next to plain "26".
			raw = strings.TrimSuffix(strings.TrimSpace(raw), "dBm")
			if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
				return types.Dbm(v), true
			}
		}
	}
	return 0, false
}

func (r *Resolver) fromName(name string) (types.Dbm, bool) {
	if m := r.marker.FindStringSubmatch(name); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return types.Dbm(v), true
		}
	}
	if m := dbmSuffixPat.FindStringSubmatch(name); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return types.Dbm(v), true
		}
	}
	return 0, false
}
