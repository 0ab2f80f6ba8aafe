// Package geo resolves free-text place names and coordinates to
// administrative zones and districts.
package geo

import (
	"strings"
)

// Place is a resolved administrative location. Fields are empty when
// resolution fails; Resolve never returns an error.
type Place struct {
	Zone     string `json:"zone,omitempty"`
	District string `json:"district,omitempty"`
}

// Resolver matches place names against the static district and alias tables
// with a coordinate bounding-box fallback. Safe for concurrent use; all
// state is immutable after construction.
type Resolver struct {
	aliases   map[string]string // normalized alias -> canonical district
	districts map[string]string // normalized district -> canonical district
}

// NewResolver builds a resolver from the static tables.
func NewResolver() *Resolver {
	r := &Resolver{
		aliases:   make(map[string]string, len(districtAliases)),
		districts: make(map[string]string, len(districtZones)),
	}
	for alias, canonical := range districtAliases {
		r.aliases[Normalize(alias)] = canonical
	}
	for district := range districtZones {
		r.districts[Normalize(district)] = district
	}
	return r
}

// Normalize lowercases, strips punctuation and collapses whitespace so that
// "D.G. Khan", "dg khan" and "DG  KHAN" compare equal.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range strings.ToLower(s) {
		switch c {
		case '.', '-', ',', '\'', '/':
			b.WriteByte(' ')
		default:
			b.WriteRune(c)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Resolve maps a place name and/or coordinate pair to a zone and district.
// Name matching is attempted first; coordinates are only consulted when the
// name yields nothing. Unresolvable input produces an empty Place rather
// than an error or a default zone.
func (r *Resolver) Resolve(name string, lat, lon *float64) Place {
	if name != "" {
		if p := r.ResolveName(name); p.Zone != "" {
			return p
		}
	}
	if lat != nil && lon != nil {
		if zone := r.ResolveCoords(*lat, *lon); zone != "" {
			return Place{Zone: zone}
		}
	}
	return Place{}
}

// ResolveName matches a free-text place string against the alias and
// district tables: exact alias, exact district, per-token district, then a
// substring scan where the longest matching table key wins.
func (r *Resolver) ResolveName(name string) Place {
	norm := Normalize(name)
	if norm == "" {
		return Place{}
	}

	if district, ok := r.aliases[norm]; ok {
		return placeFor(district)
	}
	if district, ok := r.districts[norm]; ok {
		return placeFor(district)
	}

	for _, token := range strings.Fields(norm) {
		if district, ok := r.districts[token]; ok {
			return placeFor(district)
		}
	}

	// Substring fallback. Longest key wins so that "dera ghazi khan city"
	// resolves to Dera Ghazi Khan rather than whichever shorter key happens
	// to be iterated first.
	best := ""
	bestDistrict := ""
	for key, district := range r.districts {
		if len(key) > len(best) && strings.Contains(norm, key) {
			best, bestDistrict = key, district
		}
	}
	for key, district := range r.aliases {
		if len(key) > len(best) && strings.Contains(norm, key) {
			best, bestDistrict = key, district
		}
	}
	if bestDistrict != "" {
		return placeFor(bestDistrict)
	}

	return Place{}
}

// ResolveCoords maps a coordinate pair to a zone via the approximate
// per-zone bounding boxes. Returns empty when no box contains the point.
func (r *Resolver) ResolveCoords(lat, lon float64) string {
	for _, box := range zoneBoxes {
		if lat >= box.minLat && lat <= box.maxLat && lon >= box.minLon && lon <= box.maxLon {
			return box.zone
		}
	}
	return ""
}

func placeFor(district string) Place {
	return Place{Zone: districtZones[district], District: district}
}
