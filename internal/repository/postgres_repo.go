package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/planpoker/poker-jira-backend/internal/model"
)

type DBConfig struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepoFromConfig(cfg *DBConfig) (*PostgresRepo, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Pass, cfg.Name)
	return NewPostgresRepoFromDSN(dsn)
}

func NewPostgresRepoFromDSN(dsn string) (*PostgresRepo, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	// ping
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &PostgresRepo{DB: db}, nil
}

func (r *PostgresRepo) RunMigrations(ctx context.Context) error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
		`CREATE TABLE IF NOT EXISTS admins (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            username VARCHAR(100) UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
        );`,
		`CREATE TABLE IF NOT EXISTS jira_connections (
            id UUID PRIMARY KEY,
            label VARCHAR(200) NOT NULL DEFAULT '',
            api_url VARCHAR(200) NOT NULL,
            username VARCHAR(200) NOT NULL DEFAULT '',
            encrypted_password TEXT NOT NULL DEFAULT '',
            story_points_field VARCHAR(200) NOT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
        );`,
		`CREATE TABLE IF NOT EXISTS poker_sessions (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
        );`,
		`CREATE TABLE IF NOT EXISTS stories (
            id UUID PRIMARY KEY,
            ticket_number TEXT,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            story_points DOUBLE PRECISION,
            poker_session_id UUID REFERENCES poker_sessions(id) ON DELETE SET NULL,
            sort_order INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT now(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
        );`,
	}
	for _, q := range queries {
		if _, err := r.DB.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// ------------------------------------------------------------------
// admins
// ------------------------------------------------------------------

func (r *PostgresRepo) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	row := r.DB.QueryRowContext(ctx, `
        SELECT id, username, password_hash, created_at
        FROM admins
        WHERE username = $1
        LIMIT 1
    `, username)

	var a model.Admin
	if err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepo) UpsertAdmin(ctx context.Context, username, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO admins (username, password_hash) VALUES ($1,$2)
		ON CONFLICT (username) DO UPDATE SET password_hash = $2
	`, username, passwordHash)
	return err
}

// ------------------------------------------------------------------
// jira connections
// ------------------------------------------------------------------

func (r *PostgresRepo) CreateConnection(ctx context.Context, c *model.JiraConnection) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return r.DB.QueryRowContext(ctx, `
        INSERT INTO jira_connections (id, label, api_url, username, encrypted_password, story_points_field)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at, updated_at
    `, c.ID, c.Label, c.APIURL, c.Username, c.EncryptedPassword, c.StoryPointsField).
		Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *PostgresRepo) GetConnections(ctx context.Context) ([]model.JiraConnection, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, label, api_url, username, encrypted_password, story_points_field, created_at, updated_at
        FROM jira_connections
        ORDER BY created_at, id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.JiraConnection
	for rows.Next() {
		var c model.JiraConnection
		if err := rows.Scan(
			&c.ID, &c.Label, &c.APIURL, &c.Username,
			&c.EncryptedPassword, &c.StoryPointsField,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetConnection(ctx context.Context, id string) (*model.JiraConnection, error) {
	row := r.DB.QueryRowContext(ctx, `
        SELECT id, label, api_url, username, encrypted_password, story_points_field, created_at, updated_at
        FROM jira_connections
        WHERE id = $1
    `, id)

	var c model.JiraConnection
	if err := row.Scan(
		&c.ID, &c.Label, &c.APIURL, &c.Username,
		&c.EncryptedPassword, &c.StoryPointsField,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresRepo) UpdateConnection(ctx context.Context, c *model.JiraConnection) error {
	return r.DB.QueryRowContext(ctx, `
        UPDATE jira_connections SET
            label = $2,
            api_url = $3,
            username = $4,
            encrypted_password = $5,
            story_points_field = $6,
            updated_at = now()
        WHERE id = $1
        RETURNING updated_at
    `, c.ID, c.Label, c.APIURL, c.Username, c.EncryptedPassword, c.StoryPointsField).
		Scan(&c.UpdatedAt)
}

func (r *PostgresRepo) DeleteConnection(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM jira_connections WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ------------------------------------------------------------------
// poker sessions
// ------------------------------------------------------------------

func (r *PostgresRepo) CreateSession(ctx context.Context, s *model.PokerSession) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return r.DB.QueryRowContext(ctx, `
        INSERT INTO poker_sessions (id, name) VALUES ($1,$2)
        RETURNING created_at
    `, s.ID, s.Name).Scan(&s.CreatedAt)
}

func (r *PostgresRepo) GetSessions(ctx context.Context) ([]model.PokerSession, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, name, created_at FROM poker_sessions ORDER BY created_at, id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PokerSession
	for rows.Next() {
		var s model.PokerSession
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetSession(ctx context.Context, id string) (*model.PokerSession, error) {
	var s model.PokerSession
	err := r.DB.QueryRowContext(ctx, `
        SELECT id, name, created_at FROM poker_sessions WHERE id = $1
    `, id).Scan(&s.ID, &s.Name, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ------------------------------------------------------------------
// stories
// ------------------------------------------------------------------

const storyColumns = `id, ticket_number, title, description, story_points, poker_session_id, sort_order, created_at, updated_at`

func scanStory(rows *sql.Rows) (model.Story, error) {
	var st model.Story
	err := rows.Scan(
		&st.ID, &st.TicketNumber, &st.Title, &st.Description,
		&st.StoryPoints, &st.PokerSessionID, &st.Position,
		&st.CreatedAt, &st.UpdatedAt,
	)
	return st, err
}

// nextPosition returns the next slot in the session's insertion order.
// Unbound stories (NULL session) share one global order.
func nextPosition(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, sessionID model.JsonNullString) (int, error) {
	var next int
	err := q.QueryRowContext(ctx, `
        SELECT COALESCE(MAX(sort_order) + 1, 0) FROM stories
        WHERE poker_session_id IS NOT DISTINCT FROM $1
    `, sessionID).Scan(&next)
	return next, err
}

func (r *PostgresRepo) CreateStory(ctx context.Context, st *model.Story) error {
	if st.ID == "" {
		st.ID = uuid.New().String()
	}
	pos, err := nextPosition(ctx, r.DB, st.PokerSessionID)
	if err != nil {
		return err
	}
	st.Position = pos
	return r.DB.QueryRowContext(ctx, `
        INSERT INTO stories (id, ticket_number, title, description, story_points, poker_session_id, sort_order)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at, updated_at
    `, st.ID, st.TicketNumber, st.Title, st.Description, st.StoryPoints, st.PokerSessionID, st.Position).
		Scan(&st.CreatedAt, &st.UpdatedAt)
}

// CreateStories inserts a batch in one transaction, continuing the
// target session's insertion order. All rows land or none do.
func (r *PostgresRepo) CreateStories(ctx context.Context, stories []*model.Story) error {
	if len(stories) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	base, err := nextPosition(ctx, tx, stories[0].PokerSessionID)
	if err != nil {
		return err
	}
	for i, st := range stories {
		if st.ID == "" {
			st.ID = uuid.New().String()
		}
		st.Position = base + i
		if err := tx.QueryRowContext(ctx, `
            INSERT INTO stories (id, ticket_number, title, description, story_points, poker_session_id, sort_order)
            VALUES ($1,$2,$3,$4,$5,$6,$7)
            RETURNING created_at, updated_at
        `, st.ID, st.TicketNumber, st.Title, st.Description, st.StoryPoints, st.PokerSessionID, st.Position).
			Scan(&st.CreatedAt, &st.UpdatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PostgresRepo) GetStories(ctx context.Context, sessionID string) ([]model.Story, error) {
	q := `SELECT ` + storyColumns + ` FROM stories`
	args := []any{}
	if sessionID != "" {
		q += ` WHERE poker_session_id = $1`
		args = append(args, sessionID)
	}
	q += ` ORDER BY sort_order, id`

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Story
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// GetStoriesByIDs loads the selected stories in their stable batch
// order (sort_order, then id), not in the order the IDs were given.
func (r *PostgresRepo) GetStoriesByIDs(ctx context.Context, ids []string) ([]model.Story, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT `+storyColumns+` FROM stories
        WHERE id = ANY($1)
        ORDER BY sort_order, id
    `, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Story
	for rows.Next() {
		st, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetStory(ctx context.Context, id string) (*model.Story, error) {
	row := r.DB.QueryRowContext(ctx, `
        SELECT `+storyColumns+` FROM stories WHERE id = $1
    `, id)

	var st model.Story
	if err := row.Scan(
		&st.ID, &st.TicketNumber, &st.Title, &st.Description,
		&st.StoryPoints, &st.PokerSessionID, &st.Position,
		&st.CreatedAt, &st.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *PostgresRepo) UpdateStory(ctx context.Context, st *model.Story) error {
	return r.DB.QueryRowContext(ctx, `
        UPDATE stories SET
            ticket_number = $2,
            title = $3,
            description = $4,
            story_points = $5,
            poker_session_id = $6,
            updated_at = now()
        WHERE id = $1
        RETURNING updated_at
    `, st.ID, st.TicketNumber, st.Title, st.Description, st.StoryPoints, st.PokerSessionID).
		Scan(&st.UpdatedAt)
}

func (r *PostgresRepo) DeleteStory(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM stories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
