package repos

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wheelibin/merossd/internal/models"
)

const initSchema = `
  CREATE TABLE IF NOT EXISTS device (
    id VARCHAR(64) PRIMARY KEY,
    name TEXT,
    address TEXT,
    channel INTEGER,
    unreachable INTEGER,
    last_intent TEXT,
    last_error TEXT,
    last_update_time TIMESTAMP
  );

  DELETE FROM device;
`

// DeviceRepo keeps per-device diagnostic status for the current run
type DeviceRepo struct {
	logger *log.Logger
	db     *sql.DB
}

func NewDeviceRepo(logger *log.Logger, db *sql.DB) (*DeviceRepo, error) {

	_, err := db.Exec(initSchema)
	if err != nil {
		return nil, fmt.Errorf("Error initialising device schema: %w", err)
	}

	return &DeviceRepo{logger: logger, db: db}, nil
}

func (r *DeviceRepo) Add(devices []models.DeviceIdentity) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("Error adding devices: %w", err)
	}
	for _, device := range devices {
		_, err := tx.Exec(
			`INSERT INTO device (id, name, address, channel) VALUES ($1, $2, $3, $4);`,
			device.ID,
			device.Name,
			device.Address,
			device.Channel,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("Error adding device (%s): %w", device.ID, err)
		}
	}
	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("Error adding devices: %w", err)
	}

	return nil
}

func (r *DeviceRepo) MarkDeviceAsUpdated(id string, intent string) error {
	_, err := r.db.Exec(`
    UPDATE device
    SET last_update_time = $1,
        last_intent = $2,
        unreachable = null,
        last_error = null
    WHERE id = $3
  `, time.Now(), intent, id)
	if err != nil {
		return fmt.Errorf("Error marking device (%s) as updated: %w", id, err)
	}
	return nil
}

func (r *DeviceRepo) SetDeviceUnreachable(id string, intent string, cause error) error {
	_, err := r.db.Exec(`
    UPDATE device
    SET unreachable = true,
        last_intent = $1,
        last_error = $2
    WHERE id = $3
  `, intent, errorText(cause), id)
	if err != nil {
		return fmt.Errorf("Error setting device (%s) to unreachable: %w", id, err)
	}
	return nil
}

func (r *DeviceRepo) SetDeviceError(id string, intent string, cause error) error {
	_, err := r.db.Exec("UPDATE device SET last_intent = $1, last_error = $2 WHERE id = $3", intent, errorText(cause), id)
	if err != nil {
		return fmt.Errorf("Error recording error for device (%s): %w", id, err)
	}
	return nil
}

const selectStatus = `
    SELECT id, name, address, channel,
           coalesce(unreachable, 0),
           coalesce(last_intent, ''),
           coalesce(last_error, ''),
           last_update_time
    FROM device`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatus(row rowScanner) (models.DeviceStatus, error) {
	var (
		status     models.DeviceStatus
		lastUpdate sql.NullTime
	)
	err := row.Scan(&status.ID, &status.Name, &status.Address, &status.Channel, &status.Unreachable, &status.LastIntent, &status.LastError, &lastUpdate)
	if err != nil {
		return models.DeviceStatus{}, err
	}
	if lastUpdate.Valid {
		status.LastUpdateTime = &lastUpdate.Time
	}
	return status, nil
}

func (r *DeviceRepo) GetDeviceStatus(id string) (models.DeviceStatus, error) {
	status, err := scanStatus(r.db.QueryRow(selectStatus+" WHERE id = $1", id))
	if err != nil {
		return models.DeviceStatus{}, fmt.Errorf("Error reading status for device (%s): %w", id, err)
	}
	return status, nil
}

func (r *DeviceRepo) GetAllDeviceStatuses() ([]models.DeviceStatus, error) {
	rows, err := r.db.Query(selectStatus + " ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("Error reading device statuses: %w", err)
	}
	defer rows.Close()

	statuses := []models.DeviceStatus{}

	for rows.Next() {
		status, err := scanStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("Error reading device statuses: %w", err)
		}
		statuses = append(statuses, status)
	}

	return statuses, rows.Err()
}

func (r *DeviceRepo) GetUnreachableDeviceIDs() ([]string, error) {
	rows, err := r.db.Query("SELECT id FROM device WHERE unreachable IS NOT NULL ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("Error reading unreachable devices: %w", err)
	}
	defer rows.Close()

	ids := []string{}

	for rows.Next() {
		var id string
		_ = rows.Scan(&id)

		ids = append(ids, id)
	}

	return ids, nil
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
