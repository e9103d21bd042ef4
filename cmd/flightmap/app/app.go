package app

import (
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/roman-kulish/camera-trigger/internal/shotlog"
)

func Run(config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := shotlog.New(config.DBPath)
	defer store.Close()

	data, err := readSession(store, config.SessionID)
	if err != nil {
		return err
	}

	if config.Verbose {
		logger.Info("session loaded",
			slog.String("vehicle", data.Session.Vehicle),
			slog.Int("shots", len(data.Shots)),
			slog.Int("triggers", len(data.Triggers)),
			slog.String("trackLength", humanMeters(data.TrackLength())))
	}

	img, err := NewMapRenderer(config.Width).Render(data)
	if err != nil {
		return fmt.Errorf("rendering flight map: %w", err)
	}

	if !config.NoAnnotations {
		annotator, err := NewAnnotator(config.FontPath)
		if err != nil {
			return fmt.Errorf("creating annotator: %w", err)
		}
		if err = annotator.Annotate(img, data); err != nil {
			return fmt.Errorf("annotating flight map: %w", err)
		}
	}

	logger.Info("writing flight map",
		slog.String("destination", config.OutputFile),
		slog.String("format", string(config.Format)),
		slog.Int("width", img.Bounds().Dx()),
		slog.Int("height", img.Bounds().Dy()))

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}

func readSession(store *shotlog.Store, sessionID int64) (*FlightData, error) {
	session, err := store.Session(sessionID)
	if err != nil {
		return nil, fmt.Errorf("reading session %d: %w", sessionID, err)
	}

	shots, err := store.Shots(sessionID)
	if err != nil {
		return nil, fmt.Errorf("reading shots: %w", err)
	}

	triggers, err := store.Triggers(sessionID)
	if err != nil {
		return nil, fmt.Errorf("reading triggers: %w", err)
	}

	return &FlightData{Session: session, Shots: shots, Triggers: triggers}, nil
}
