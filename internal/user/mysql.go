package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/xjzfwqgf/chat-web/internal/model"
)

const (
	usersTable = "users"

	// ER_DUP_ENTRY
	mysqlDuplicateEntry = 1062
)

type userRow struct {
	Username string         `db:"username"`
	Password string         `db:"password"`
	Nickname string         `db:"nickname"`
	Avatar   sql.NullString `db:"avatar"`
}

func (r userRow) toModel() model.User {
	return model.User{
		Username:     r.Username,
		PasswordHash: r.Password,
		Nickname:     r.Nickname,
		Avatar:       r.Avatar.String,
	}
}

// MySQL is the users table backed directory
type MySQL struct {
	db *sqlx.DB
}

func NewMySQL(db *sqlx.DB) *MySQL {
	return &MySQL{db: db}
}

func (r *MySQL) Create(ctx context.Context, u model.User) error {
	query, args, err := sq.Insert(usersTable).
		Columns("username", "password", "nickname", "avatar").
		Values(u.Username, u.PasswordHash, u.Nickname, u.Avatar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *MySQL) Get(ctx context.Context, username string) (model.User, error) {
	query, args, err := sq.Select("username", "password", "nickname", "avatar").
		From(usersTable).
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return model.User{}, fmt.Errorf("failed to build sql query: %v", err)
	}

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return row.toModel(), nil
}

func (r *MySQL) List(ctx context.Context) ([]model.User, error) {
	query, args, err := sq.Select("username", "password", "nickname", "avatar").
		From(usersTable).
		OrderBy("username ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]model.User, len(rows))
	for i, row := range rows {
		out[i] = row.toModel()
	}
	return out, nil
}

// Lookup resolves many usernames with a single IN query
func (r *MySQL) Lookup(ctx context.Context, usernames []string) (map[string]model.Identity, error) {
	out := make(map[string]model.Identity, len(usernames))
	if len(usernames) == 0 {
		return out, nil
	}

	query, args, err := sq.Select("username", "password", "nickname", "avatar").
		From(usersTable).
		Where(sq.Eq{"username": usernames}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to lookup users: %w", err)
	}

	for _, row := range rows {
		out[row.Username] = row.toModel().Identity()
	}
	return out, nil
}
