package app

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/roman-kulish/camera-trigger/internal/geo"
	"github.com/roman-kulish/camera-trigger/internal/shotlog"
	"github.com/roman-kulish/camera-trigger/internal/telemetry"
)

var (
	backgroundColor = color.RGBA{R: 0x10, G: 0x14, B: 0x18, A: 0xff}
	trackColor      = color.RGBA{R: 0x4f, G: 0x8f, B: 0xcf, A: 0xff}
	triggerColor    = color.RGBA{R: 0xd0, G: 0xa0, B: 0x30, A: 0xff}
	shotColor       = color.RGBA{R: 0x50, G: 0xc0, B: 0x60, A: 0xff}
)

const mapMargin = 40 // pixels around the track

// FlightData is everything the renderer needs for one session.
type FlightData struct {
	Session  *shotlog.SessionData
	Shots    []shotlog.ShotData
	Triggers []shotlog.TriggerData
}

// TrackLength returns the summed ground distance between consecutive
// confirmed shots, in meters.
func (d *FlightData) TrackLength() float64 {
	var total float64
	for i := 1; i < len(d.Shots); i++ {
		total += geo.HorizontalDistance(d.Shots[i-1].Location, d.Shots[i].Location)
	}
	return total
}

// point is a projected location in image coordinates.
type point struct {
	X, Y int
}

// MapRenderer draws the flight track and shot markers of a session. All
// locations are projected into the UTM zone of the first shot so that
// pixel distances are proportional to ground distances.
type MapRenderer struct {
	width int
}

func NewMapRenderer(width int) *MapRenderer {
	return &MapRenderer{width: width}
}

// Render produces the flight map image. It requires at least one shot or
// trigger location to anchor the projection.
func (r *MapRenderer) Render(data *FlightData) (*image.RGBA, error) {
	locations := collectLocations(data)
	if len(locations) == 0 {
		return nil, errors.New("session has no located shots or triggers")
	}

	epsg := geo.UTMZone(locations[0])

	minE, minN := math.Inf(1), math.Inf(1)
	maxE, maxN := math.Inf(-1), math.Inf(-1)
	for _, loc := range locations {
		e, n := geo.Project(epsg, loc)
		minE, maxE = math.Min(minE, e), math.Max(maxE, e)
		minN, maxN = math.Min(minN, n), math.Max(maxN, n)
	}

	spanE, spanN := maxE-minE, maxN-minN
	if spanE < 1 {
		spanE = 1
	}
	if spanN < 1 {
		spanN = 1
	}

	// Fit the track to the requested width, but cap the height for tracks
	// running mostly north-south so a narrow flight line cannot produce an
	// arbitrarily tall image.
	drawWidth := r.width - 2*mapMargin
	maxDrawHeight := 2 * r.width
	scale := float64(drawWidth) / spanE
	if spanN*scale > float64(maxDrawHeight) {
		scale = float64(maxDrawHeight) / spanN
	}
	height := int(spanN*scale) + 2*mapMargin
	if height < drawWidth/4 {
		height = drawWidth / 4
	}

	img := image.NewRGBA(image.Rect(0, 0, r.width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	toPixel := func(loc telemetry.Location) point {
		e, n := geo.Project(epsg, loc)
		return point{
			X: mapMargin + int((e-minE)*scale),
			// northing grows up, image Y grows down
			Y: height - mapMargin - int((n-minN)*scale),
		}
	}

	var prev *point
	for i := range data.Shots {
		p := toPixel(data.Shots[i].Location)
		if prev != nil {
			drawLine(img, *prev, p, trackColor)
		}
		prev = &p
	}

	for i := range data.Triggers {
		drawMarker(img, toPixel(data.Triggers[i].Location), 2, triggerColor)
	}
	for i := range data.Shots {
		drawMarker(img, toPixel(data.Shots[i].Location), 3, shotColor)
	}

	return img, nil
}

func collectLocations(data *FlightData) []telemetry.Location {
	locations := make([]telemetry.Location, 0, len(data.Shots)+len(data.Triggers))
	for i := range data.Shots {
		locations = append(locations, data.Shots[i].Location)
	}
	for i := range data.Triggers {
		locations = append(locations, data.Triggers[i].Location)
	}
	return locations
}

// drawLine draws a 1 px line between two points (Bresenham).
func drawLine(img *image.RGBA, from, to point, c color.Color) {
	dx, dy := abs(to.X-from.X), -abs(to.Y-from.Y)
	sx, sy := 1, 1
	if from.X > to.X {
		sx = -1
	}
	if from.Y > to.Y {
		sy = -1
	}

	err := dx + dy
	x, y := from.X, from.Y
	for {
		img.Set(x, y, c)
		if x == to.X && y == to.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// drawMarker draws a filled circle of the given radius.
func drawMarker(img *image.RGBA, center point, radius int, c color.Color) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				img.Set(center.X+dx, center.Y+dy, c)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
