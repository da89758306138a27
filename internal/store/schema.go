package store

// Column types are chosen to work unchanged on sqlite3 and PostgreSQL.
const createReadingsSQL = `
CREATE TABLE IF NOT EXISTS readings (
    charger        TEXT NOT NULL,
    fetched_at     BIGINT NOT NULL,
    charge_power   DOUBLE PRECISION,
    charge_current DOUBLE PRECISION,
    session_energy DOUBLE PRECISION,
    mains_voltage  DOUBLE PRECISION,
    is_charging    INTEGER NOT NULL CHECK (is_charging IN (0, 1)),
    car_connected  INTEGER NOT NULL CHECK (car_connected IN (0, 1)),
    status_json    TEXT NOT NULL,
    power_json     TEXT NOT NULL,
    PRIMARY KEY (charger, fetched_at)
)`

const insertReadingSQL = `
INSERT INTO readings (
    charger, fetched_at,
    charge_power, charge_current, session_energy, mains_voltage,
    is_charging, car_connected,
    status_json, power_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (charger, fetched_at) DO NOTHING`

const selectRecentSQL = `
SELECT charger, fetched_at,
       charge_power, charge_current, session_energy, mains_voltage,
       is_charging, car_connected,
       status_json, power_json
FROM readings
WHERE charger = ?
ORDER BY fetched_at DESC
LIMIT ?`

const deleteOlderSQL = `DELETE FROM readings WHERE fetched_at < ?`
