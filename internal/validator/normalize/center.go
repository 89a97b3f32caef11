package normalize

import (
	"strconv"
	"strings"
)

// Center is the single canonical shape of a flight-area center. Raw
// submissions carry the center either as a "lat,lng" string or as an object
// with numeric latitude/longitude; nothing downstream of this package ever
// sees those loose shapes.
type Center struct {
	Latitude  float64
	Longitude float64
}

// ParseCenter normalizes a raw flightAreaCenter value. The second return
// value is false when the value is absent or in neither supported shape.
func ParseCenter(v any) (Center, bool) {
	switch value := v.(type) {
	case string:
		return parseCenterString(value)
	case map[string]any:
		lat := Float(value["latitude"])
		lng := Float(value["longitude"])
		if lat == nil || lng == nil {
			return Center{}, false
		}
		return Center{Latitude: *lat, Longitude: *lng}, true
	default:
		return Center{}, false
	}
}

func parseCenterString(s string) (Center, bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return Center{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Center{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Center{}, false
	}
	return Center{Latitude: lat, Longitude: lng}, true
}
