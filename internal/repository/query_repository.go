package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/querydesk/internal/domain"
)

// QueryFilter captures listing parameters. A zero Limit lists everything.
type QueryFilter struct {
	Status *domain.QueryStatus
	Limit  int
	Offset int
}

// QueryRepository encapsulates query persistence.
type QueryRepository interface {
	Create(ctx context.Context, query *domain.Query) error
	GetByID(ctx context.Context, id int64) (*domain.Query, error)
	List(ctx context.Context, filter QueryFilter) ([]domain.Query, error)
	// Close moves an open query to closed. It returns ErrNotFound for unknown
	// ids and ErrAlreadyClosed when the query is not open.
	Close(ctx context.Context, id int64, closedAt time.Time) error
	CountByStatus(ctx context.Context) (domain.QueryStats, error)
}

type queryRepository struct {
	pool *pgxpool.Pool
}

// NewQueryRepository instantiates repository.
func NewQueryRepository(pool *pgxpool.Pool) QueryRepository {
	return &queryRepository{pool: pool}
}

const queryColumns = `query_id, mail_id, mobile_number, query_heading, query_description,
               status, query_created_time, query_closed_time`

func (r *queryRepository) Create(ctx context.Context, query *domain.Query) error {
	const stmt = `
        INSERT INTO queries (mail_id, mobile_number, query_heading, query_description, status, query_created_time)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING query_id`
	return r.pool.QueryRow(ctx, stmt,
		query.MailID,
		query.MobileNo,
		query.Heading,
		query.Description,
		query.Status,
		query.CreatedAt,
	).Scan(&query.ID)
}

func (r *queryRepository) GetByID(ctx context.Context, id int64) (*domain.Query, error) {
	stmt := `SELECT ` + queryColumns + ` FROM queries WHERE query_id=$1`
	query, err := scanQuery(r.pool.QueryRow(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return query, nil
}

func (r *queryRepository) List(ctx context.Context, filter QueryFilter) ([]domain.Query, error) {
	stmt, args := buildListQuery(filter)
	rows, err := r.pool.Query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Query{}
	for rows.Next() {
		query, err := scanQuery(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *query)
	}
	return result, rows.Err()
}

// closeQueryStmt only touches open rows, so the first closure time is kept
// and concurrent closes of one query see a single affected row.
const closeQueryStmt = `
        UPDATE queries SET status=$1, query_closed_time=$2
        WHERE query_id=$3 AND status=$4`

const queryStatusStmt = `SELECT status FROM queries WHERE query_id=$1`

func closeArgs(id int64, closedAt time.Time) []any {
	return []any{domain.QueryStatusClosed, closedAt, id, domain.QueryStatusOpen}
}

func (r *queryRepository) Close(ctx context.Context, id int64, closedAt time.Time) error {
	cmd, err := r.pool.Exec(ctx, closeQueryStmt, closeArgs(id, closedAt)...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}

	var status domain.QueryStatus
	err = r.pool.QueryRow(ctx, queryStatusStmt, id).Scan(&status)
	return closeMiss(id, status, err)
}

// closeMiss explains why the conditional update matched no row, given the
// status lookup that followed it.
func closeMiss(id int64, status domain.QueryStatus, lookupErr error) error {
	switch {
	case errors.Is(lookupErr, pgx.ErrNoRows):
		return ErrNotFound
	case lookupErr != nil:
		return lookupErr
	case status == domain.QueryStatusClosed:
		return ErrAlreadyClosed
	default:
		return fmt.Errorf("query %d not closed, status %q", id, status)
	}
}

const countByStatusStmt = `SELECT status, COUNT(*) FROM queries GROUP BY status`

func (r *queryRepository) CountByStatus(ctx context.Context) (domain.QueryStats, error) {
	var stats domain.QueryStats

	rows, err := r.pool.Query(ctx, countByStatusStmt)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status domain.QueryStatus
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return stats, err
		}
		switch status {
		case domain.QueryStatusOpen:
			stats.Open = count
		case domain.QueryStatusClosed:
			stats.Closed = count
		}
	}
	return stats, rows.Err()
}

// buildListQuery renders the listing statement. Filter values are always
// bound as arguments.
func buildListQuery(filter QueryFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	stmt := fmt.Sprintf(`SELECT %s FROM queries WHERE %s ORDER BY query_created_time DESC, query_id DESC`,
		queryColumns, strings.Join(clauses, " AND "))

	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		stmt += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}
	return stmt, args
}

func scanQuery(row pgx.Row) (*domain.Query, error) {
	var query domain.Query
	if err := row.Scan(
		&query.ID,
		&query.MailID,
		&query.MobileNo,
		&query.Heading,
		&query.Description,
		&query.Status,
		&query.CreatedAt,
		&query.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &query, nil
}
