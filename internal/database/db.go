package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Connect establishes a connection to the database
func Connect(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return &DB{db}, nil
}

// RunMigrations executes all SQL migration files in order
func (db *DB) RunMigrations(migrationsDir string) error {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			sqlFiles = append(sqlFiles, file.Name())
		}
	}
	sort.Strings(sqlFiles)

	for _, filename := range sqlFiles {
		filePath := filepath.Join(migrationsDir, filename)
		content, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}
	}

	return nil
}

const floatColumns = `id, float_id, latitude, longitude, depth, temperature, salinity,
	pressure, oxygen, ph, chlorophyll, timestamp, status, data_quality, created_at, updated_at`

func scanFloatRecord(row interface{ Scan(...any) error }) (*FloatRecord, error) {
	var rec FloatRecord
	err := row.Scan(
		&rec.ID,
		&rec.FloatID,
		&rec.Latitude,
		&rec.Longitude,
		&rec.Depth,
		&rec.Temperature,
		&rec.Salinity,
		&rec.Pressure,
		&rec.Oxygen,
		&rec.PH,
		&rec.Chlorophyll,
		&rec.Timestamp,
		&rec.Status,
		&rec.DataQuality,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func collectFloatRecords(rows *sql.Rows) ([]FloatRecord, error) {
	defer rows.Close()

	var records []FloatRecord
	for rows.Next() {
		rec, err := scanFloatRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// UpsertFloatRecord inserts a float record or refreshes the existing one
func (db *DB) UpsertFloatRecord(ctx context.Context, rec *FloatRecord) error {
	query := `
		INSERT INTO float_records (
			float_id, latitude, longitude, depth, temperature, salinity,
			pressure, oxygen, ph, chlorophyll, timestamp, status, data_quality
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (float_id) DO UPDATE
		SET latitude = EXCLUDED.latitude,
		    longitude = EXCLUDED.longitude,
		    depth = EXCLUDED.depth,
		    temperature = COALESCE(EXCLUDED.temperature, float_records.temperature),
		    salinity = COALESCE(EXCLUDED.salinity, float_records.salinity),
		    pressure = COALESCE(EXCLUDED.pressure, float_records.pressure),
		    oxygen = COALESCE(EXCLUDED.oxygen, float_records.oxygen),
		    ph = COALESCE(EXCLUDED.ph, float_records.ph),
		    chlorophyll = COALESCE(EXCLUDED.chlorophyll, float_records.chlorophyll),
		    timestamp = EXCLUDED.timestamp,
		    status = EXCLUDED.status,
		    updated_at = CURRENT_TIMESTAMP
	`
	status := rec.Status
	if status == "" {
		status = FloatStatusActive
	}
	quality := rec.DataQuality
	if quality == "" {
		quality = "good"
	}

	_, err := db.ExecContext(ctx, query,
		rec.FloatID, rec.Latitude, rec.Longitude, rec.Depth,
		rec.Temperature, rec.Salinity, rec.Pressure, rec.Oxygen,
		rec.PH, rec.Chlorophyll, rec.Timestamp, status, quality,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert float record: %w", err)
	}
	return nil
}

// GetFloatRecord retrieves a float record by float id. Returns nil when the
// float is unknown.
func (db *DB) GetFloatRecord(ctx context.Context, floatID string) (*FloatRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM float_records WHERE float_id = $1", floatColumns)

	rec, err := scanFloatRecord(db.QueryRowContext(ctx, query, floatID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get float record: %w", err)
	}
	return rec, nil
}

// AllFloats returns every float record. The dataset this system targets is
// hundreds to low thousands of rows, so a full scan is acceptable.
func (db *DB) AllFloats(ctx context.Context) ([]FloatRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM float_records", floatColumns)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query floats: %w", err)
	}
	return collectFloatRecords(rows)
}

// ActiveFloats returns every float record with active status
func (db *DB) ActiveFloats(ctx context.Context) ([]FloatRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM float_records WHERE status = $1", floatColumns)

	rows, err := db.QueryContext(ctx, query, FloatStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active floats: %w", err)
	}
	return collectFloatRecords(rows)
}

// FloatsInBox returns active floats inside an inclusive lat/lon box
func (db *DB) FloatsInBox(ctx context.Context, latMin, latMax, lonMin, lonMax float64, limit int) ([]FloatRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM float_records
		WHERE status = $1
		  AND latitude BETWEEN $2 AND $3
		  AND longitude BETWEEN $4 AND $5
		LIMIT $6`, floatColumns)

	rows, err := db.QueryContext(ctx, query, FloatStatusActive, latMin, latMax, lonMin, lonMax, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query floats in box: %w", err)
	}
	return collectFloatRecords(rows)
}

// CountFloats returns total and active float counts
func (db *DB) CountFloats(ctx context.Context) (total int, active int, err error) {
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $1) FROM float_records`,
		FloatStatusActive,
	).Scan(&total, &active)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count floats: %w", err)
	}
	return total, active, nil
}

// QueryObservations executes an observation filter against the float store.
func (db *DB) QueryObservations(ctx context.Context, f ObservationFilter) ([]FloatRecord, error) {
	query, args, err := buildObservationQuery(f)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	return collectFloatRecords(rows)
}

// CreateChatSession creates a new chat session
func (db *DB) CreateChatSession(ctx context.Context, session *ChatSession) error {
	query := `
		INSERT INTO chat_sessions (session_id, user_id, title)
		VALUES ($1, $2, $3)
	`
	_, err := db.ExecContext(ctx, query, session.SessionID, session.UserID, session.Title)
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	return nil
}

// GetChatSession retrieves a session by id. Returns nil when not found.
func (db *DB) GetChatSession(ctx context.Context, sessionID string) (*ChatSession, error) {
	query := `
		SELECT session_id, user_id, title, query_count, last_query, created_at, updated_at
		FROM chat_sessions
		WHERE session_id = $1
	`

	var s ChatSession
	err := db.QueryRowContext(ctx, query, sessionID).Scan(
		&s.SessionID, &s.UserID, &s.Title, &s.QueryCount, &s.LastQuery, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}
	return &s, nil
}

// AddChatMessage appends a message to a session and bumps its counters
func (db *DB) AddChatMessage(ctx context.Context, msg *ChatMessage) error {
	query := `
		INSERT INTO chat_messages (session_id, message_type, content, data_points, confidence)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := db.QueryRowContext(ctx, query,
		msg.SessionID, msg.MessageType, msg.Content, msg.DataPoints, msg.Confidence,
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("failed to add chat message: %w", err)
	}

	if msg.MessageType == MessageTypeUser {
		update := `
			UPDATE chat_sessions
			SET query_count = query_count + 1,
			    last_query = $1,
			    updated_at = CURRENT_TIMESTAMP
			WHERE session_id = $2
		`
		if _, err := db.ExecContext(ctx, update, msg.Content, msg.SessionID); err != nil {
			return fmt.Errorf("failed to update session counters: %w", err)
		}
	}
	return nil
}

// GetSessionMessages returns the most recent messages for a session, oldest first
func (db *DB) GetSessionMessages(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error) {
	query := `
		SELECT id, session_id, message_type, content, data_points, confidence, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query session messages: %w", err)
	}
	defer rows.Close()

	var messages []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.MessageType, &m.Content, &m.DataPoints, &m.Confidence, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// LatestRegionalSummaries returns the most recent summary per region
func (db *DB) LatestRegionalSummaries(ctx context.Context) ([]RegionalSummary, error) {
	query := `
		SELECT DISTINCT ON (region)
			id, region, day, avg_temperature, avg_salinity, avg_oxygen, sample_count, created_at
		FROM regional_summaries
		ORDER BY region, day DESC
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query regional summaries: %w", err)
	}
	defer rows.Close()

	var summaries []RegionalSummary
	for rows.Next() {
		var s RegionalSummary
		if err := rows.Scan(&s.ID, &s.Region, &s.Day, &s.AvgTemperature, &s.AvgSalinity, &s.AvgOxygen, &s.SampleCount, &s.CreatedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// TimeseriesPoint is one averaged sample for chart payloads
type TimeseriesPoint struct {
	Day   time.Time
	Value float64
	Count int
}

// ParameterTimeseries returns daily averages of one parameter over a lookback
// window, optionally restricted to a lat/lon box.
func (db *DB) ParameterTimeseries(ctx context.Context, parameter string, days int, latMin, latMax, lonMin, lonMax *float64) ([]TimeseriesPoint, error) {
	column, ok := parameterColumns[parameter]
	if !ok {
		return nil, fmt.Errorf("%w: unknown parameter %q", ErrInvalidFilter, parameter)
	}

	conds := []string{fmt.Sprintf("%s IS NOT NULL", column)}
	args := []any{}
	n := 1

	if days > 0 {
		conds = append(conds, fmt.Sprintf("timestamp >= NOW() - ($%d * INTERVAL '1 day')", n))
		args = append(args, days)
		n++
	}
	if latMin != nil && latMax != nil {
		conds = append(conds, fmt.Sprintf("latitude BETWEEN $%d AND $%d", n, n+1))
		args = append(args, *latMin, *latMax)
		n += 2
	}
	if lonMin != nil && lonMax != nil {
		conds = append(conds, fmt.Sprintf("longitude BETWEEN $%d AND $%d", n, n+1))
		args = append(args, *lonMin, *lonMax)
		n += 2
	}

	query := fmt.Sprintf(`
		SELECT DATE_TRUNC('day', timestamp) AS day, AVG(%s), COUNT(*)
		FROM float_records
		WHERE %s
		GROUP BY day
		ORDER BY day
	`, column, strings.Join(conds, " AND "))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query timeseries: %w", err)
	}
	defer rows.Close()

	var points []TimeseriesPoint
	for rows.Next() {
		var p TimeseriesPoint
		if err := rows.Scan(&p.Day, &p.Value, &p.Count); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
