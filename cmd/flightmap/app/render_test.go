package app

import (
	"testing"
	"time"

	"github.com/roman-kulish/camera-trigger/internal/shotlog"
	"github.com/roman-kulish/camera-trigger/internal/telemetry"
)

func testFlightData() *FlightData {
	// Roughly a 100 m eastward line at the equator.
	shots := []shotlog.ShotData{
		{Location: telemetry.Location{Latitude: 0, Longitude: 0}, Sequence: 1},
		{Location: telemetry.Location{Latitude: 0, Longitude: 0.00045}, Sequence: 2},
		{Location: telemetry.Location{Latitude: 0, Longitude: 0.0009}, Sequence: 3},
	}
	triggers := []shotlog.TriggerData{
		{Timestamp: time.Now(), Location: shots[0].Location},
		{Timestamp: time.Now(), Location: shots[1].Location},
		{Timestamp: time.Now(), Location: shots[2].Location},
	}

	return &FlightData{
		Session:  &shotlog.SessionData{ID: 1, Vehicle: "quad-1", TriggerType: "relay", StartTime: time.Now()},
		Shots:    shots,
		Triggers: triggers,
	}
}

func TestRenderDimensions(t *testing.T) {
	img, err := NewMapRenderer(800).Render(testFlightData())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 800 {
		t.Errorf("width = %d, want 800", bounds.Dx())
	}
	if bounds.Dy() < 2*mapMargin {
		t.Errorf("height = %d, want at least %d", bounds.Dy(), 2*mapMargin)
	}
}

func TestRenderDrawsMarkers(t *testing.T) {
	img, err := NewMapRenderer(800).Render(testFlightData())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var shotPixels, trackPixels int
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			switch img.RGBAAt(x, y) {
			case shotColor:
				shotPixels++
			case trackColor:
				trackPixels++
			}
		}
	}

	if shotPixels == 0 {
		t.Error("no shot marker pixels drawn")
	}
	if trackPixels == 0 {
		t.Error("no track line pixels drawn")
	}
}

func TestRenderNorthSouthTrackHeightCapped(t *testing.T) {
	// Roughly a 200 m northward line: spanning almost no easting, which
	// must not blow the image height up through the easting-derived scale.
	data := &FlightData{
		Session: &shotlog.SessionData{ID: 1, Vehicle: "quad-1", TriggerType: "relay", StartTime: time.Now()},
		Shots: []shotlog.ShotData{
			{Location: telemetry.Location{Latitude: 0, Longitude: 0}, Sequence: 1},
			{Location: telemetry.Location{Latitude: 0.0018, Longitude: 0}, Sequence: 2},
		},
	}

	width := 120
	img, err := NewMapRenderer(width).Render(data)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	maxHeight := 2*width + 2*mapMargin
	if got := img.Bounds().Dy(); got > maxHeight {
		t.Errorf("height = %d, want at most %d", got, maxHeight)
	}
}

func TestRenderEmptySession(t *testing.T) {
	data := &FlightData{Session: &shotlog.SessionData{ID: 1}}
	if _, err := NewMapRenderer(800).Render(data); err == nil {
		t.Error("Render() error = nil, want error for empty session")
	}
}

func TestTrackLength(t *testing.T) {
	data := testFlightData()

	got := data.TrackLength()
	if got < 80 || got > 120 {
		t.Errorf("TrackLength() = %.1f m, want roughly 100 m", got)
	}
}
