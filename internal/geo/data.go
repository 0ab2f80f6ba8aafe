package geo

// Static administrative data. Districts map to exactly one zone; aliases map
// to exactly one canonical district. All keys are stored pre-normalized.

// Zone names.
const (
	ZonePunjab      = "Punjab"
	ZoneSindh       = "Sindh"
	ZoneKPK         = "Khyber Pakhtunkhwa"
	ZoneBalochistan = "Balochistan"
)

// districtZones maps canonical district names to their containing zone.
var districtZones = map[string]string{
	// Punjab
	"Lahore":           ZonePunjab,
	"Faisalabad":       ZonePunjab,
	"Rawalpindi":       ZonePunjab,
	"Multan":           ZonePunjab,
	"Bahawalpur":       ZonePunjab,
	"Rahim Yar Khan":   ZonePunjab,
	"Sargodha":         ZonePunjab,
	"Muzaffargarh":     ZonePunjab,
	"Kot Addu":         ZonePunjab,
	"Dera Ghazi Khan":  ZonePunjab,
	"Rajanpur":         ZonePunjab,
	"Layyah":           ZonePunjab,

	// Sindh
	"Karachi":     ZoneSindh,
	"Hyderabad":   ZoneSindh,
	"Sukkur":      ZoneSindh,
	"Larkana":     ZoneSindh,
	"Mirpur Khas": ZoneSindh,
	"Thatta":      ZoneSindh,

	// Khyber Pakhtunkhwa
	"Peshawar":         ZoneKPK,
	"Mardan":           ZoneKPK,
	"Abbottabad":       ZoneKPK,
	"Swat":             ZoneKPK,
	"Dera Ismail Khan": ZoneKPK,

	// Balochistan
	"Quetta":  ZoneBalochistan,
	"Gwadar":  ZoneBalochistan,
	"Sibi":    ZoneBalochistan,
	"Khuzdar": ZoneBalochistan,
	"Turbat":  ZoneBalochistan,
}

// districtAliases maps normalized alternate spellings to canonical district
// names.
var districtAliases = map[string]string{
	"dg khan":       "Dera Ghazi Khan",
	"d g khan":      "Dera Ghazi Khan",
	"dgk":           "Dera Ghazi Khan",
	"di khan":       "Dera Ismail Khan",
	"d i khan":      "Dera Ismail Khan",
	"dikhan":        "Dera Ismail Khan",
	"pindi":         "Rawalpindi",
	"lyallpur":      "Faisalabad",
	"khi":           "Karachi",
	"kotaddu":       "Kot Addu",
	"kot adu":       "Kot Addu",
	"ryk":           "Rahim Yar Khan",
	"mirpurkhas":    "Mirpur Khas",
	"abbotabad":     "Abbottabad",
	"muzaffar garh": "Muzaffargarh",
}

// boundingBox is an approximate rectangle covering a zone.
type boundingBox struct {
	zone                   string
	minLat, maxLat         float64
	minLon, maxLon         float64
}

// zoneBoxes are scanned in order; the first box containing the point wins.
// Overlaps at province borders are unavoidable at this granularity.
var zoneBoxes = []boundingBox{
	{zone: ZonePunjab, minLat: 27.7, maxLat: 34.0, minLon: 69.3, maxLon: 75.4},
	{zone: ZoneSindh, minLat: 23.5, maxLat: 28.5, minLon: 66.5, maxLon: 71.1},
	{zone: ZoneKPK, minLat: 31.5, maxLat: 36.9, minLon: 69.2, maxLon: 74.0},
	{zone: ZoneBalochistan, minLat: 24.8, maxLat: 32.3, minLon: 60.8, maxLon: 70.3},
}

// ZoneOf returns the zone a canonical district belongs to, or empty when the
// district is unknown.
func ZoneOf(district string) string {
	return districtZones[district]
}

// Zones returns the known zone names.
func Zones() []string {
	return []string{ZonePunjab, ZoneSindh, ZoneKPK, ZoneBalochistan}
}
