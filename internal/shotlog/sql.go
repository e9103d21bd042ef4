package shotlog

import (
	_ "embed"
)

const (
	insertSessionSQL = `
INSERT INTO sessions (start_time,
                      vehicle,
                      trigger_type,
                      config)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    vehicle,
    trigger_type,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    vehicle,
    trigger_type,
    config
FROM sessions
ORDER BY start_time`

	insertShotSQL = `
INSERT INTO shots (session_id,
                   timestamp_us,
                   latitude,
                   longitude,
                   altitude,
                   roll,
                   pitch,
                   yaw,
                   image_index,
                   sequence)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectShotsSQL = `
SELECT
    timestamp_us,
    latitude,
    longitude,
    altitude,
    roll,
    pitch,
    yaw,
    image_index,
    sequence
FROM shots
WHERE
    session_id = ?
ORDER BY sequence`

	insertTriggerSQL = `
INSERT INTO triggers (session_id,
                      timestamp,
                      latitude,
                      longitude,
                      altitude)
VALUES (?, ?, ?, ?, ?)`

	selectTriggersSQL = `
SELECT
    timestamp,
    latitude,
    longitude,
    altitude
FROM triggers
WHERE
    session_id = ?
ORDER BY timestamp`

	insertCameraInfoSQL = `
INSERT INTO camera_info (session_id,
                         timestamp,
                         settings)
VALUES (?, ?, ?)`
)

//go:embed schema.sql
var schemaSQL string
