// Package postgres provides a signage.Repository backed by PostgreSQL via
// pgx. Content attributes and submission reconciliation are persisted in a
// single transaction, so a content item is never observable without its
// submissions.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/placard/placard/pkg/signage"
)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository implements signage.Repository using PostgreSQL
type Repository struct {
	db DB
}

// New creates a new PostgreSQL repository
func New(db DB) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository from a connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "submission") {
				return fmt.Errorf("submission already exists for this feed")
			}
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Content operations

func (r *Repository) CreateContent(ctx context.Context, content *signage.Content) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return r.handlePostgresError("create content", err)
	}
	defer tx.Rollback(ctx)

	if err := insertContent(ctx, tx, content); err != nil {
		return err
	}
	if err := replaceMedia(ctx, tx, content); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*signage.Content, error) {
	query := `
        SELECT id, owner_id, kind, name, duration, data, start_time, end_time,
               created_at, updated_at
        FROM content WHERE id = $1`

	var content signage.Content
	err := r.db.QueryRow(ctx, query, id).Scan(
		&content.ID, &content.OwnerID, &content.Kind, &content.Name,
		&content.Duration, &content.Data, &content.StartTime, &content.EndTime,
		&content.CreatedAt, &content.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, signage.ErrContentNotFound
		}
		return nil, r.handlePostgresError("get content", err)
	}

	if content.Media, err = r.mediaFor(ctx, id); err != nil {
		return nil, err
	}
	if content.Submissions, err = r.submissionsFor(ctx, id); err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *Repository) UpdateContent(ctx context.Context, content *signage.Content) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return r.handlePostgresError("update content", err)
	}
	defer tx.Rollback(ctx)

	if err := updateContent(ctx, tx, content); err != nil {
		return err
	}
	if err := replaceMedia(ctx, tx, content); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) DeleteContent(ctx context.Context, id uuid.UUID) error {
	// Submissions and media cascade with the content row.
	tag, err := r.db.Exec(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete content", err)
	}
	if tag.RowsAffected() == 0 {
		return signage.ErrContentNotFound
	}
	return nil
}

func (r *Repository) ListContent(ctx context.Context, filter signage.ContentFilter) ([]*signage.Content, error) {
	query := `
        SELECT DISTINCT c.id, c.owner_id, c.kind, c.name, c.duration, c.data,
               c.start_time, c.end_time, c.created_at, c.updated_at
        FROM content c`
	var conditions []string
	var args []interface{}

	if filter.FeedID != nil {
		query += ` JOIN submissions s ON s.content_id = c.id`
		args = append(args, *filter.FeedID)
		conditions = append(conditions, fmt.Sprintf("s.feed_id = $%d", len(args)))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf("c.owner_id = $%d", len(args)))
	}
	if filter.Kind != nil {
		args = append(args, signage.NormalizeKind(*filter.Kind))
		conditions = append(conditions, fmt.Sprintf("c.kind = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY c.created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list content", err)
	}
	defer rows.Close()

	var result []*signage.Content
	for rows.Next() {
		var content signage.Content
		if err := rows.Scan(
			&content.ID, &content.OwnerID, &content.Kind, &content.Name,
			&content.Duration, &content.Data, &content.StartTime, &content.EndTime,
			&content.CreatedAt, &content.UpdatedAt); err != nil {
			return nil, r.handlePostgresError("list content", err)
		}
		result = append(result, &content)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list content", err)
	}

	for _, content := range result {
		if content.Submissions, err = r.submissionsFor(ctx, content.ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// SaveContentWithSubmissions upserts the content attributes and applies the
// reconciliation result in one transaction.
func (r *Repository) SaveContentWithSubmissions(ctx context.Context, content *signage.Content, result signage.ReconcileResult) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return r.handlePostgresError("save content", err)
	}
	defer tx.Rollback(ctx)

	if err := upsertContent(ctx, tx, content); err != nil {
		return err
	}
	if err := replaceMedia(ctx, tx, content); err != nil {
		return err
	}

	for _, sub := range result.Remove {
		if _, err := tx.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, sub.ID); err != nil {
			return r.handlePostgresError("remove submission", err)
		}
	}
	for _, sub := range result.Keep {
		if _, err := tx.Exec(ctx, `
            UPDATE submissions
            SET moderation_flag = $2, moderator_id = $3, updated_at = $4
            WHERE id = $1`,
			sub.ID, sub.Moderation, sub.ModeratorID, sub.UpdatedAt); err != nil {
			return r.handlePostgresError("update submission", err)
		}
	}
	for _, sub := range result.Create {
		if _, err := tx.Exec(ctx, `
            INSERT INTO submissions (
                id, content_id, feed_id, duration, moderation_flag,
                moderator_id, created_at, updated_at
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			sub.ID, sub.ContentID, sub.FeedID, sub.Duration, sub.Moderation,
			sub.ModeratorID, sub.CreatedAt, sub.UpdatedAt); err != nil {
			return r.handlePostgresError("create submission", err)
		}
	}

	return tx.Commit(ctx)
}

// Feed operations

func (r *Repository) CreateFeed(ctx context.Context, feed *signage.Feed) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO feeds (id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)`,
		feed.ID, feed.Name, feed.Description, feed.CreatedAt, feed.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create feed", err)
	}
	return nil
}

func (r *Repository) GetFeed(ctx context.Context, id uuid.UUID) (*signage.Feed, error) {
	var feed signage.Feed
	err := r.db.QueryRow(ctx, `
        SELECT id, name, description, created_at, updated_at
        FROM feeds WHERE id = $1`, id).Scan(
		&feed.ID, &feed.Name, &feed.Description, &feed.CreatedAt, &feed.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, signage.ErrFeedNotFound
		}
		return nil, r.handlePostgresError("get feed", err)
	}
	return &feed, nil
}

func (r *Repository) ListFeeds(ctx context.Context) ([]*signage.Feed, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, name, description, created_at, updated_at
        FROM feeds ORDER BY name`)
	if err != nil {
		return nil, r.handlePostgresError("list feeds", err)
	}
	defer rows.Close()

	var result []*signage.Feed
	for rows.Next() {
		var feed signage.Feed
		if err := rows.Scan(&feed.ID, &feed.Name, &feed.Description, &feed.CreatedAt, &feed.UpdatedAt); err != nil {
			return nil, r.handlePostgresError("list feeds", err)
		}
		result = append(result, &feed)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list feeds", err)
	}
	return result, nil
}

// helpers

func (r *Repository) mediaFor(ctx context.Context, contentID uuid.UUID) ([]signage.Media, error) {
	rows, err := r.db.Query(ctx, `
        SELECT file_name, file_type, file_size, object_key
        FROM media WHERE content_id = $1 ORDER BY position`, contentID)
	if err != nil {
		return nil, r.handlePostgresError("get media", err)
	}
	defer rows.Close()

	var media []signage.Media
	for rows.Next() {
		var m signage.Media
		if err := rows.Scan(&m.FileName, &m.FileType, &m.FileSize, &m.ObjectKey); err != nil {
			return nil, r.handlePostgresError("get media", err)
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

func (r *Repository) submissionsFor(ctx context.Context, contentID uuid.UUID) ([]*signage.Submission, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, content_id, feed_id, duration, moderation_flag,
               moderator_id, created_at, updated_at
        FROM submissions WHERE content_id = $1 ORDER BY created_at`, contentID)
	if err != nil {
		return nil, r.handlePostgresError("get submissions", err)
	}
	defer rows.Close()

	var subs []*signage.Submission
	for rows.Next() {
		var sub signage.Submission
		if err := rows.Scan(
			&sub.ID, &sub.ContentID, &sub.FeedID, &sub.Duration,
			&sub.Moderation, &sub.ModeratorID, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, r.handlePostgresError("get submissions", err)
		}
		subs = append(subs, &sub)
	}
	return subs, rows.Err()
}

func insertContent(ctx context.Context, tx pgx.Tx, content *signage.Content) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO content (
            id, owner_id, kind, name, duration, data, start_time, end_time,
            created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		content.ID, content.OwnerID, content.Kind, content.Name,
		content.Duration, content.Data, content.StartTime, content.EndTime,
		content.CreatedAt, content.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert content: %w", err)
	}
	return nil
}

func updateContent(ctx context.Context, tx pgx.Tx, content *signage.Content) error {
	tag, err := tx.Exec(ctx, `
        UPDATE content SET
            name = $2, duration = $3, data = $4, start_time = $5,
            end_time = $6, updated_at = $7
        WHERE id = $1`,
		content.ID, content.Name, content.Duration, content.Data,
		content.StartTime, content.EndTime, content.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return signage.ErrContentNotFound
	}
	return nil
}

func upsertContent(ctx context.Context, tx pgx.Tx, content *signage.Content) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO content (
            id, owner_id, kind, name, duration, data, start_time, end_time,
            created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name, duration = EXCLUDED.duration,
            data = EXCLUDED.data, start_time = EXCLUDED.start_time,
            end_time = EXCLUDED.end_time, updated_at = EXCLUDED.updated_at`,
		content.ID, content.OwnerID, content.Kind, content.Name,
		content.Duration, content.Data, content.StartTime, content.EndTime,
		content.CreatedAt, content.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert content: %w", err)
	}
	return nil
}

func replaceMedia(ctx context.Context, tx pgx.Tx, content *signage.Content) error {
	if _, err := tx.Exec(ctx, `DELETE FROM media WHERE content_id = $1`, content.ID); err != nil {
		return fmt.Errorf("clear media: %w", err)
	}
	for i, m := range content.Media {
		if _, err := tx.Exec(ctx, `
            INSERT INTO media (content_id, position, file_name, file_type, file_size, object_key)
            VALUES ($1, $2, $3, $4, $5, $6)`,
			content.ID, i, m.FileName, m.FileType, m.FileSize, m.ObjectKey); err != nil {
			return fmt.Errorf("insert media: %w", err)
		}
	}
	return nil
}
