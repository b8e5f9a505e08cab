package store

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/xjzfwqgf/chat-web/internal/model"
)

const messagesTable = "messages"

var messageColumns = []string{
	"id", "type", "from_user", "to_user", "content",
	"file_name", "file_size", "file_type", "file_url",
	"time", "revoked", "nickname", "avatar",
}

type messageRow struct {
	ID       int64          `db:"id"`
	Type     string         `db:"type"`
	FromUser string         `db:"from_user"`
	ToUser   sql.NullString `db:"to_user"`
	Content  sql.NullString `db:"content"`
	FileName sql.NullString `db:"file_name"`
	FileSize sql.NullInt64  `db:"file_size"`
	FileType sql.NullString `db:"file_type"`
	FileURL  sql.NullString `db:"file_url"`
	Time     string         `db:"time"`
	Revoked  bool           `db:"revoked"`
	Nickname sql.NullString `db:"nickname"`
	Avatar   sql.NullString `db:"avatar"`
}

func (r messageRow) toModel() model.Message {
	m := model.Message{
		SequenceNumber: r.ID,
		Scope:          model.Scope(r.Type),
		Sender:         r.FromUser,
		Recipient:      r.ToUser.String,
		Body:           r.Content.String,
		Timestamp:      r.Time,
		Revoked:        r.Revoked,
		DisplayName:    r.Nickname.String,
		AvatarURL:      r.Avatar.String,
	}
	if r.FileName.Valid || r.FileSize.Valid || r.FileType.Valid || r.FileURL.Valid {
		m.Attachment = &model.Attachment{
			Name:      r.FileName.String,
			SizeBytes: r.FileSize.Int64,
			MimeType:  r.FileType.String,
			URL:       r.FileURL.String,
		}
	}
	return m
}

// MySQL is the message log backed by the messages table. AUTO_INCREMENT gives
// the sequence number.
type MySQL struct {
	db *sqlx.DB
}

// NewMySQL wraps an open connection pool
func NewMySQL(db *sqlx.DB) *MySQL {
	return &MySQL{db: db}
}

// Append inserts msg and writes the generated id back as its sequence number
func (s *MySQL) Append(ctx context.Context, msg *model.Message) (int64, error) {
	var fileName, fileType, fileURL sql.NullString
	var fileSize sql.NullInt64
	if att := msg.Attachment; att != nil {
		fileName = nullString(att.Name)
		fileType = nullString(att.MimeType)
		fileURL = nullString(att.URL)
		fileSize = sql.NullInt64{Int64: att.SizeBytes, Valid: att.SizeBytes > 0}
	}

	query, args, err := sq.Insert(messagesTable).
		Columns("type", "from_user", "to_user", "content",
			"file_name", "file_size", "file_type", "file_url",
			"time", "nickname", "avatar").
		Values(string(msg.Scope), msg.Sender, nullString(msg.Recipient), msg.Body,
			fileName, fileSize, fileType, fileURL,
			msg.Timestamp, nullString(msg.DisplayName), nullString(msg.AvatarURL)).
		ToSql()
	if err != nil {
		return 0, persistenceError("append", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, persistenceError("append", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, persistenceError("append", err)
	}

	msg.SequenceNumber = id
	return id, nil
}

// ListOrdered returns every message of scope ordered by id
func (s *MySQL) ListOrdered(ctx context.Context, scope model.Scope) ([]model.Message, error) {
	query, args, err := sq.Select(messageColumns...).
		From(messagesTable).
		Where(sq.Eq{"type": string(scope)}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, persistenceError("list", err)
	}

	var rows []messageRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, persistenceError("list", err)
	}

	out := make([]model.Message, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

// DeleteBySequenceNumber removes one row and reports whether it existed
func (s *MySQL) DeleteBySequenceNumber(ctx context.Context, seq int64) (bool, error) {
	query, args, err := sq.Delete(messagesTable).
		Where(sq.Eq{"id": seq}).
		ToSql()
	if err != nil {
		return false, persistenceError("delete", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, persistenceError("delete", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, persistenceError("delete", err)
	}
	return n > 0, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
