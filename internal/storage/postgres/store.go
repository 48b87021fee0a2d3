package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"playhub/internal/models"
	"playhub/internal/storage"
)

// Store implements storage.Store on PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	type coder interface{ SQLState() string }
	var c coder
	return errors.As(err, &c) && c.SQLState() == uniqueViolation
}

// CreateCustomer inserts a customer.
func (s *Store) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	const query = `
		INSERT INTO customers (id, name, phone, email, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`
	customer.ID = uuid.NewString()
	return s.db.QueryRowContext(ctx, query,
		customer.ID,
		customer.Name,
		customer.Phone,
		customer.Email,
	).Scan(&customer.CreatedAt)
}

// GetCustomer fetches a customer by id.
func (s *Store) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	const query = `
		SELECT id, name, phone, email, created_at
		FROM customers
		WHERE id = $1
	`
	return s.scanCustomer(s.db.QueryRowContext(ctx, query, id))
}

// GetCustomerByPhone looks a customer up by the phone natural key.
func (s *Store) GetCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	const query = `
		SELECT id, name, phone, email, created_at
		FROM customers
		WHERE phone = $1
		LIMIT 1
	`
	return s.scanCustomer(s.db.QueryRowContext(ctx, query, phone))
}

func (s *Store) scanCustomer(row *sql.Row) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCustomers returns all customers, oldest first.
func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	const query = `
		SELECT id, name, phone, email, created_at
		FROM customers
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// CreateStation inserts a station; the name column is unique.
func (s *Store) CreateStation(ctx context.Context, station *models.Station) error {
	const query = `
		INSERT INTO stations (id, name, type, hourly_rate, is_active)
		VALUES ($1, $2, $3, $4, $5)
	`
	station.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, query,
		station.ID,
		station.Name,
		station.Type,
		station.HourlyRate,
		station.IsActive,
	)
	if isUniqueViolation(err) {
		return storage.ErrDuplicateStation
	}
	return err
}

// GetStation fetches a station by id.
func (s *Store) GetStation(ctx context.Context, id string) (*models.Station, error) {
	const query = `
		SELECT id, name, type, hourly_rate, is_active
		FROM stations
		WHERE id = $1
	`
	return s.scanStation(s.db.QueryRowContext(ctx, query, id))
}

// GetStationByName fetches a station by its unique name.
func (s *Store) GetStationByName(ctx context.Context, name string) (*models.Station, error) {
	const query = `
		SELECT id, name, type, hourly_rate, is_active
		FROM stations
		WHERE name = $1
	`
	return s.scanStation(s.db.QueryRowContext(ctx, query, name))
}

func (s *Store) scanStation(row *sql.Row) (*models.Station, error) {
	var st models.Station
	err := row.Scan(&st.ID, &st.Name, &st.Type, &st.HourlyRate, &st.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrStationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ListStations returns all stations ordered by name.
func (s *Store) ListStations(ctx context.Context) ([]models.Station, error) {
	const query = `
		SELECT id, name, type, hourly_rate, is_active
		FROM stations
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		var st models.Station
		if err := rows.Scan(&st.ID, &st.Name, &st.Type, &st.HourlyRate, &st.IsActive); err != nil {
			return nil, err
		}
		stations = append(stations, st)
	}
	return stations, rows.Err()
}

// UpdateStation rewrites a station row.
func (s *Store) UpdateStation(ctx context.Context, station *models.Station) error {
	const query = `
		UPDATE stations
		SET name = $2, type = $3, hourly_rate = $4, is_active = $5
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		station.ID,
		station.Name,
		station.Type,
		station.HourlyRate,
		station.IsActive,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrStationNotFound
	}
	return nil
}

// DeleteStation removes a station unless open sessions still reference it.
func (s *Store) DeleteStation(ctx context.Context, id string) error {
	const query = `
		DELETE FROM stations
		WHERE id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM sessions WHERE station_id = $1 AND is_active
		  )
	`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, getErr := s.GetStation(ctx, id); getErr != nil {
			return getErr
		}
		return storage.ErrStationBusy
	}
	return nil
}

// CreateSession opens a session. A partial unique index on
// sessions(station_id) WHERE is_active keeps one open session per station.
func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	const query = `
		INSERT INTO sessions (id, customer_id, station_id, start_time, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
	`
	session.ID = uuid.NewString()
	session.IsActive = true
	if session.StartTime.IsZero() {
		session.StartTime = time.Now()
	}
	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.CustomerID,
		session.StationID,
		session.StartTime,
	)
	if isUniqueViolation(err) {
		return storage.ErrStationOccupied
	}
	return err
}

// GetSession fetches a session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*models.Session, error) {
	const query = `
		SELECT id, customer_id, station_id, start_time, end_time, total_amount, is_active
		FROM sessions
		WHERE id = $1
	`
	var sess models.Session
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&sess.ID,
		&sess.CustomerID,
		&sess.StationID,
		&sess.StartTime,
		&sess.EndTime,
		&sess.TotalAmount,
		&sess.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// OpenSessionForStation returns the station's open session, if any.
func (s *Store) OpenSessionForStation(ctx context.Context, stationID string) (*models.Session, error) {
	const query = `
		SELECT id, customer_id, station_id, start_time, end_time, total_amount, is_active
		FROM sessions
		WHERE station_id = $1 AND is_active
		LIMIT 1
	`
	rows, err := s.querySessions(ctx, query, stationID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, storage.ErrSessionNotFound
	}
	return &rows[0], nil
}

// ListActiveSessions returns open sessions, oldest first.
func (s *Store) ListActiveSessions(ctx context.Context) ([]models.Session, error) {
	const query = `
		SELECT id, customer_id, station_id, start_time, end_time, total_amount, is_active
		FROM sessions
		WHERE is_active
		ORDER BY start_time
	`
	return s.querySessions(ctx, query)
}

// SessionsBetween returns sessions started in [start, end).
func (s *Store) SessionsBetween(ctx context.Context, start, end time.Time) ([]models.Session, error) {
	const query = `
		SELECT id, customer_id, station_id, start_time, end_time, total_amount, is_active
		FROM sessions
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time
	`
	return s.querySessions(ctx, query, start, end)
}

// SessionsClosedBetween returns completed sessions with end time in [start, end).
func (s *Store) SessionsClosedBetween(ctx context.Context, start, end time.Time) ([]models.Session, error) {
	const query = `
		SELECT id, customer_id, station_id, start_time, end_time, total_amount, is_active
		FROM sessions
		WHERE end_time >= $1 AND end_time < $2
		ORDER BY end_time
	`
	return s.querySessions(ctx, query, start, end)
}

func (s *Store) querySessions(ctx context.Context, query string, args ...interface{}) ([]models.Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var sess models.Session
		if err := rows.Scan(
			&sess.ID,
			&sess.CustomerID,
			&sess.StationID,
			&sess.StartTime,
			&sess.EndTime,
			&sess.TotalAmount,
			&sess.IsActive,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// CompleteSession finalizes an open session with its end time and bill. The
// is_active guard makes racing closes lose with ErrSessionClosed instead of
// billing twice.
func (s *Store) CompleteSession(ctx context.Context, id string, endTime time.Time, total decimal.Decimal) error {
	const query = `
		UPDATE sessions
		SET end_time = $2, total_amount = $3, is_active = FALSE
		WHERE id = $1 AND is_active
	`
	result, err := s.db.ExecContext(ctx, query, id, endTime, total)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, getErr := s.GetSession(ctx, id); getErr != nil {
			return getErr
		}
		return storage.ErrSessionClosed
	}
	return nil
}

// CreateTarget inserts a revenue target row.
func (s *Store) CreateTarget(ctx context.Context, target *models.RevenueTarget) error {
	const query = `
		INSERT INTO revenue_targets (id, type, period, target_amount, current_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`
	target.ID = uuid.NewString()
	return s.db.QueryRowContext(ctx, query,
		target.ID,
		target.Type,
		target.Period,
		target.TargetAmount,
		target.CurrentAmount,
	).Scan(&target.CreatedAt)
}

// GetTargetByPeriod returns the target matching {type, period}.
func (s *Store) GetTargetByPeriod(ctx context.Context, kind, periodID string) (*models.RevenueTarget, error) {
	const query = `
		SELECT id, type, period, target_amount, current_amount, created_at
		FROM revenue_targets
		WHERE type = $1 AND period = $2
		LIMIT 1
	`
	var t models.RevenueTarget
	err := s.db.QueryRowContext(ctx, query, kind, periodID).Scan(
		&t.ID,
		&t.Type,
		&t.Period,
		&t.TargetAmount,
		&t.CurrentAmount,
		&t.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrTargetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// AddToTarget accrues an amount with an atomic in-database increment, so
// concurrent session closes cannot lose updates.
func (s *Store) AddToTarget(ctx context.Context, id string, amount decimal.Decimal) error {
	const query = `
		UPDATE revenue_targets
		SET current_amount = current_amount + $2
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, id, amount)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrTargetNotFound
	}
	return nil
}

// ListTargets returns all targets, oldest first.
func (s *Store) ListTargets(ctx context.Context) ([]models.RevenueTarget, error) {
	const query = `
		SELECT id, type, period, target_amount, current_amount, created_at
		FROM revenue_targets
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []models.RevenueTarget
	for rows.Next() {
		var t models.RevenueTarget
		if err := rows.Scan(&t.ID, &t.Type, &t.Period, &t.TargetAmount, &t.CurrentAmount, &t.CreatedAt); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// CreateAlert appends an alert.
func (s *Store) CreateAlert(ctx context.Context, alert *models.Alert) error {
	const query = `
		INSERT INTO alerts (id, type, message, severity, is_read, created_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW())
		RETURNING created_at
	`
	alert.ID = uuid.NewString()
	return s.db.QueryRowContext(ctx, query,
		alert.ID,
		alert.Type,
		alert.Message,
		alert.Severity,
	).Scan(&alert.CreatedAt)
}

// ListAlerts returns the full alert log, newest first.
func (s *Store) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	const query = `
		SELECT id, type, message, severity, is_read, created_at
		FROM alerts
		ORDER BY created_at DESC
	`
	return s.queryAlerts(ctx, query)
}

// ListUnreadAlerts returns unread alerts, newest first.
func (s *Store) ListUnreadAlerts(ctx context.Context) ([]models.Alert, error) {
	const query = `
		SELECT id, type, message, severity, is_read, created_at
		FROM alerts
		WHERE NOT is_read
		ORDER BY created_at DESC
	`
	return s.queryAlerts(ctx, query)
}

func (s *Store) queryAlerts(ctx context.Context, query string) ([]models.Alert, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.Type, &a.Message, &a.Severity, &a.IsRead, &a.CreatedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// MarkAlertRead flips the read flag and returns the updated alert.
func (s *Store) MarkAlertRead(ctx context.Context, id string) (*models.Alert, error) {
	const query = `
		UPDATE alerts
		SET is_read = TRUE
		WHERE id = $1
		RETURNING id, type, message, severity, is_read, created_at
	`
	var a models.Alert
	err := s.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Type, &a.Message, &a.Severity, &a.IsRead, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrAlertNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateActivity appends an audit trail entry.
func (s *Store) CreateActivity(ctx context.Context, activity *models.Activity) error {
	const query = `
		INSERT INTO activities (id, type, description, customer_id, session_id, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NOW())
		RETURNING created_at
	`
	activity.ID = uuid.NewString()
	return s.db.QueryRowContext(ctx, query,
		activity.ID,
		activity.Type,
		activity.Description,
		activity.CustomerID,
		activity.SessionID,
	).Scan(&activity.CreatedAt)
}

// RecentActivities returns the latest entries.
func (s *Store) RecentActivities(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT id, type, description, COALESCE(customer_id, ''), COALESCE(session_id, ''), created_at
		FROM activities
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.Type, &a.Description, &a.CustomerID, &a.SessionID, &a.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
