package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"signal_notification_bot/internal/domain/channel"

	"github.com/lib/pq" // For pq.Array and error codes
)

var ErrChannelNotFound = errors.New("channel not found")
var ErrDuplicateChannelID = errors.New("channel with this ID already exists")

const uniqueViolation = "23505"

type PostgresChannelRepository struct {
	db *sql.DB
}

func NewPostgresChannelRepository(db *sql.DB) *PostgresChannelRepository {
	return &PostgresChannelRepository{db: db}
}

func (r *PostgresChannelRepository) Create(ctx context.Context, ch *channel.Channel) error {
	query := `INSERT INTO channels (id, rate_limit, rate_limit_interval_seconds, send_times, signals)
               VALUES ($1, $2, $3, $4, $5)
               RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		int64(ch.ID),
		ch.RateLimit,
		seconds(ch.RateLimitInterval),
		pq.Array(channel.FormatClockTimes(ch.SendTimes)),
		pq.Array(nonNil(ch.Signals)),
	).Scan(&ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateChannelID
		}
		return fmt.Errorf("error creating channel: %w", err)
	}
	return nil
}

func (r *PostgresChannelRepository) GetByID(ctx context.Context, id channel.ID) (*channel.Channel, error) {
	query := `SELECT id, rate_limit, rate_limit_interval_seconds, send_times, signals, created_at, updated_at
               FROM channels WHERE id = $1`
	ch, err := scanChannel(r.db.QueryRowContext(ctx, query, int64(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("error getting channel by ID: %w", err)
	}
	return ch, nil
}

func (r *PostgresChannelRepository) Update(ctx context.Context, ch *channel.Channel) error {
	query := `UPDATE channels
               SET rate_limit = $1, rate_limit_interval_seconds = $2, send_times = $3, signals = $4, updated_at = NOW()
               WHERE id = $5
               RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		ch.RateLimit,
		seconds(ch.RateLimitInterval),
		pq.Array(channel.FormatClockTimes(ch.SendTimes)),
		pq.Array(nonNil(ch.Signals)),
		int64(ch.ID),
	).Scan(&ch.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrChannelNotFound
		}
		return fmt.Errorf("error updating channel: %w", err)
	}
	return nil
}

func (r *PostgresChannelRepository) Delete(ctx context.Context, id channel.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM channels WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("error deleting channel: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading deleted rows: %w", err)
	}
	if n == 0 {
		return ErrChannelNotFound
	}
	return nil
}

func (r *PostgresChannelRepository) ListAll(ctx context.Context) ([]*channel.Channel, error) {
	query := `SELECT id, rate_limit, rate_limit_interval_seconds, send_times, signals, created_at, updated_at
               FROM channels ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing channels: %w", err)
	}
	defer rows.Close()

	channels := make([]*channel.Channel, 0)
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning channel: %w", err)
		}
		channels = append(channels, ch)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating channels: %w", err)
	}
	return channels, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChannel(row rowScanner) (*channel.Channel, error) {
	var (
		id              int64
		intervalSeconds int64
		sendTimes       []string
		ch              channel.Channel
	)
	err := row.Scan(&id, &ch.RateLimit, &intervalSeconds, pq.Array(&sendTimes), pq.Array(&ch.Signals), &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		return nil, err
	}
	ch.ID = channel.ID(id)
	ch.RateLimitInterval = time.Duration(intervalSeconds) * time.Second
	ch.SendTimes, err = channel.ParseClockTimes(sendTimes)
	if err != nil {
		return nil, fmt.Errorf("channel %d: %w", id, err)
	}
	ch.Signals = nonNil(ch.Signals)
	return &ch, nil
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
