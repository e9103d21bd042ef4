// Package shotlog persists camera trigger events to a sqlite database: one
// session per controller run, a trigger record per fired pulse, a shot
// record per feedback-confirmed picture and a camera-info record per
// configuration change.
package shotlog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/camera-trigger/internal/camera"
	"github.com/roman-kulish/camera-trigger/internal/telemetry"
)

// Store handles database operations. Connections are opened lazily: a WAL
// write connection for the recording path and a read-only connection for
// tooling.
type Store struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// SessionData describes a recording session.
type SessionData struct {
	ID          int64
	StartTime   time.Time
	Vehicle     string
	TriggerType camera.TriggerType
	Config      *string
}

// ShotData is a stored feedback-confirmed shot.
type ShotData struct {
	TimestampMicros int64
	Location        telemetry.Location
	Attitude        telemetry.Attitude
	ImageIndex      uint16
	Sequence        uint32
}

// TriggerData is a stored trigger event.
type TriggerData struct {
	Timestamp time.Time
	Location  telemetry.Location
}

// New creates a store for the given database path. The schema is
// initialized when the write connection is first used.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func (s *Store) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if _, err = db.Exec(schemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *Store) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

// OpenSession creates a new session row and returns a Session bound to it.
// config may be a string, []byte or any JSON-serializable value and is
// stored verbatim alongside the session for audit.
func (s *Store) OpenSession(vehicle string, triggerType camera.TriggerType, config any) (session *Session, err error) {
	var configData sql.NullString

	if config != nil {
		switch v := config.(type) {
		case string:
			configData.Valid = true
			configData.String = v

		case []byte:
			configData.Valid = true
			configData.String = string(v)

		default:
			var p []byte
			if p, err = json.Marshal(config); err != nil {
				err = fmt.Errorf("marshaling config: %w", err)
				return
			}

			configData.Valid = true
			configData.String = string(p)
		}
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.Prepare(insertSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.Exec(vehicle, string(triggerType), configData)
	if err != nil {
		err = fmt.Errorf("inserting session: %w", err)
		return
	}

	id, err := result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting session ID: %w", err)
		return
	}

	return &Session{store: s, id: id}, nil
}

// Session returns a session by its ID.
func (s *Store) Session(id int64) (session *SessionData, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.Prepare(selectSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var sess SessionData
	var config sql.NullString
	if err = stmt.QueryRow(id).Scan(&sess.ID, &sess.StartTime, &sess.Vehicle, &sess.TriggerType, &config); err != nil {
		err = fmt.Errorf("scanning session: %w", err)
		return
	}
	if config.Valid {
		sess.Config = &config.String
	}
	return &sess, nil
}

// Sessions returns all sessions ordered by start time.
func (s *Store) Sessions() (sessions []SessionData, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.Query(selectSessionsSQL)
	if err != nil {
		err = fmt.Errorf("querying sessions: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var sess SessionData
		var config sql.NullString
		if err = rows.Scan(&sess.ID, &sess.StartTime, &sess.Vehicle, &sess.TriggerType, &config); err != nil {
			err = fmt.Errorf("scanning session: %w", err)
			return
		}
		if config.Valid {
			sess.Config = &config.String
		}
		sessions = append(sessions, sess)
	}
	err = rows.Err()
	return
}

// Shots returns the confirmed shots of a session ordered by sequence.
func (s *Store) Shots(sessionID int64) (shots []ShotData, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.Query(selectShotsSQL, sessionID)
	if err != nil {
		err = fmt.Errorf("querying shots: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var shot ShotData
		if err = rows.Scan(
			&shot.TimestampMicros,
			&shot.Location.Latitude,
			&shot.Location.Longitude,
			&shot.Location.Altitude,
			&shot.Attitude.Roll,
			&shot.Attitude.Pitch,
			&shot.Attitude.Yaw,
			&shot.ImageIndex,
			&shot.Sequence,
		); err != nil {
			err = fmt.Errorf("scanning shot: %w", err)
			return
		}
		shots = append(shots, shot)
	}
	err = rows.Err()
	return
}

// Triggers returns the trigger events of a session ordered by time,
// including blind triggers that never got a confirmed shot.
func (s *Store) Triggers(sessionID int64) (triggers []TriggerData, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.Query(selectTriggersSQL, sessionID)
	if err != nil {
		err = fmt.Errorf("querying triggers: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var trig TriggerData
		if err = rows.Scan(
			&trig.Timestamp,
			&trig.Location.Latitude,
			&trig.Location.Longitude,
			&trig.Location.Altitude,
		); err != nil {
			err = fmt.Errorf("scanning trigger: %w", err)
			return
		}
		triggers = append(triggers, trig)
	}
	err = rows.Err()
	return
}

// Close closes the database connections. It is safe to call multiple times.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		if writeErr != nil || readErr != nil {
			s.closeErr = errors.Join(writeErr, readErr)
		}
	})

	return s.closeErr
}

// Session is a write handle bound to one session row. It implements the
// controller's event sink.
type Session struct {
	store *Store
	id    int64
}

// ID returns the session row ID.
func (w *Session) ID() int64 { return w.id }

// WriteCamera stores a feedback-confirmed shot.
func (w *Session) WriteCamera(rec camera.FeedbackRecord) (err error) {
	db, err := w.store.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	stmt, err := db.Prepare(insertShotSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	_, err = stmt.Exec(
		w.id,
		rec.TimestampMicros,
		rec.Location.Latitude,
		rec.Location.Longitude,
		rec.Location.Altitude,
		rec.Attitude.Roll,
		rec.Attitude.Pitch,
		rec.Attitude.Yaw,
		rec.ImageIndex,
		rec.Sequence,
	)
	if err != nil {
		return fmt.Errorf("inserting shot: %w", err)
	}
	return nil
}

// WriteTrigger stores a trigger event.
func (w *Session) WriteTrigger(t time.Time, loc telemetry.Location) (err error) {
	db, err := w.store.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	stmt, err := db.Prepare(insertTriggerSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if _, err = stmt.Exec(w.id, t.UTC(), loc.Latitude, loc.Longitude, loc.Altitude); err != nil {
		return fmt.Errorf("inserting trigger: %w", err)
	}
	return nil
}

// WriteCameraInfo stores a configuration change as opaque JSON.
func (w *Session) WriteCameraInfo(t time.Time, settings camera.CameraSettings) (err error) {
	p, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	db, err := w.store.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	stmt, err := db.Prepare(insertCameraInfoSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if _, err = stmt.Exec(w.id, t.UTC(), string(p)); err != nil {
		return fmt.Errorf("inserting camera info: %w", err)
	}
	return nil
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
