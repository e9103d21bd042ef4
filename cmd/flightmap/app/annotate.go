package app

import (
	"fmt"
	"image"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"golang.org/x/image/font"
)

const (
	dpi     float64 = 72
	size    float64 = 14
	spacing float64 = 1.2
)

type Annotator struct {
	context *freetype.Context
}

// NewAnnotator loads a TTF font from disk and prepares a drawing context.
func NewAnnotator(fontPath string) (*Annotator, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font file: %w", err)
	}

	parsedFont, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	context := freetype.NewContext()
	context.SetDPI(dpi)
	context.SetFont(parsedFont)
	context.SetFontSize(size)
	context.SetSrc(image.White)
	context.SetHinting(font.HintingFull)

	return &Annotator{context: context}, nil
}

// Annotate draws the session summary into the bottom-left corner.
func (a *Annotator) Annotate(img *image.RGBA, data *FlightData) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	lines := []string{
		fmt.Sprintf("Vehicle: %s", data.Session.Vehicle),
		fmt.Sprintf("Session start: %s", data.Session.StartTime.Local().Format(time.DateTime)),
		fmt.Sprintf("Trigger: %s", data.Session.TriggerType),
		fmt.Sprintf("Shots: %s confirmed, %s triggered", humanize.Comma(int64(len(data.Shots))), humanize.Comma(int64(len(data.Triggers)))),
		fmt.Sprintf("Track length: %s", humanMeters(data.TrackLength())),
	}

	imgSize := img.Bounds().Size()
	top := imgSize.Y - 8 - int(size*spacing*float64(len(lines)))

	pt := freetype.Pt(8, top)
	for _, s := range lines {
		if _, err := a.context.DrawString(s, pt); err != nil {
			return fmt.Errorf("drawing annotation: %w", err)
		}
		pt.Y += a.context.PointToFixed(size * spacing)
	}

	return nil
}

func humanMeters(meters float64) string {
	si, suffix := humanize.ComputeSI(meters)
	return fmt.Sprintf("%0.2f %sm", si, suffix)
}
