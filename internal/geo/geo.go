package geo

import (
	"math"

	"github.com/wroge/wgs84"

	"github.com/roman-kulish/camera-trigger/internal/telemetry"
)

// Horizontal distances are measured on a transverse Mercator projection
// rather than directly on the ellipsoid: both fixes are projected into the
// UTM zone of the first fix, where meter distortion over camera-trigger
// distances (tens of meters) is negligible.

const epsgWGS84 = 4326

// HorizontalDistance returns the horizontal ground distance in meters
// between two fixes, ignoring altitude.
func HorizontalDistance(from, to telemetry.Location) float64 {
	transform := wgs84.EPSG().Transform(epsgWGS84, utmEPSG(from))

	fromE, fromN, _ := transform(from.Longitude, from.Latitude, 0)
	toE, toN, _ := transform(to.Longitude, to.Latitude, 0)

	return math.Hypot(toE-fromE, toN-fromN)
}

// Project returns the easting/northing in meters of a fix within the given
// UTM zone EPSG code. Used by the flight map renderer so that a whole
// session shares one projection.
func Project(epsg int, loc telemetry.Location) (east, north float64) {
	east, north, _ = wgs84.EPSG().Transform(epsgWGS84, epsg)(loc.Longitude, loc.Latitude, 0)
	return east, north
}

// UTMZone returns the EPSG code of the UTM zone containing the fix.
func UTMZone(loc telemetry.Location) int {
	return utmEPSG(loc)
}

func utmEPSG(loc telemetry.Location) int {
	zone := int(math.Floor((loc.Longitude+180)/6)) + 1
	if zone < 1 {
		zone = 1
	} else if zone > 60 {
		zone = 60
	}

	if loc.Latitude >= 0 {
		return 32600 + zone // northern hemisphere
	}
	return 32700 + zone
}
