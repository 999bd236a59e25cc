package db

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Post struct {
	ID        int64          `json:"id"`
	Bot       string         `json:"bot"`
	Handle    string         `json:"handle"`
	Uri       string         `json:"uri"`
	Cid       string         `json:"cid"`
	PostUrl   sql.NullString `json:"post_url"`
	SourceID  sql.NullString `json:"source_id"`
	Caption   string         `json:"caption"`
	Width     int64          `json:"width"`
	Height    int64          `json:"height"`
	CreatedAt time.Time      `json:"created_at"`
}

const recordPostedItem = `-- name: RecordPostedItem :exec
INSERT OR IGNORE INTO posted_items (item_id) VALUES (?)
`

func (q *Queries) RecordPostedItem(ctx context.Context, itemID string) error {
	_, err := q.db.ExecContext(ctx, recordPostedItem, itemID)
	return err
}

const hasPostedItem = `-- name: HasPostedItem :one
SELECT COUNT(*) FROM posted_items WHERE item_id = ?
`

func (q *Queries) HasPostedItem(ctx context.Context, itemID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, hasPostedItem, itemID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listPostedItemIDs = `-- name: ListPostedItemIDs :many
SELECT item_id FROM posted_items ORDER BY posted_at, item_id
`

func (q *Queries) ListPostedItemIDs(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listPostedItemIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var itemID string
		if err := rows.Scan(&itemID); err != nil {
			return nil, err
		}
		items = append(items, itemID)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const clearPostedItems = `-- name: ClearPostedItems :exec
DELETE FROM posted_items
`

func (q *Queries) ClearPostedItems(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, clearPostedItems)
	return err
}

const createPost = `-- name: CreatePost :execlastid
INSERT INTO posts (bot, handle, uri, cid, post_url, source_id, caption, width, height)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreatePostParams struct {
	Bot      string         `json:"bot"`
	Handle   string         `json:"handle"`
	Uri      string         `json:"uri"`
	Cid      string         `json:"cid"`
	PostUrl  sql.NullString `json:"post_url"`
	SourceID sql.NullString `json:"source_id"`
	Caption  string         `json:"caption"`
	Width    int64          `json:"width"`
	Height   int64          `json:"height"`
}

// CreatePost inserts a post and reads it back.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (Post, error) {
	result, err := q.db.ExecContext(ctx, createPost,
		arg.Bot,
		arg.Handle,
		arg.Uri,
		arg.Cid,
		arg.PostUrl,
		arg.SourceID,
		arg.Caption,
		arg.Width,
		arg.Height,
	)
	if err != nil {
		return Post{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Post{}, err
	}
	return q.GetPost(ctx, id)
}

const getPost = `-- name: GetPost :one
SELECT id, bot, handle, uri, cid, post_url, source_id, caption, width, height, created_at FROM posts
WHERE id = ?
`

func (q *Queries) GetPost(ctx context.Context, id int64) (Post, error) {
	row := q.db.QueryRowContext(ctx, getPost, id)
	var i Post
	err := row.Scan(
		&i.ID,
		&i.Bot,
		&i.Handle,
		&i.Uri,
		&i.Cid,
		&i.PostUrl,
		&i.SourceID,
		&i.Caption,
		&i.Width,
		&i.Height,
		&i.CreatedAt,
	)
	return i, err
}

const listRecentPosts = `-- name: ListRecentPosts :many
SELECT id, bot, handle, uri, cid, post_url, source_id, caption, width, height, created_at FROM posts
ORDER BY created_at DESC, id DESC
LIMIT ?
`

func (q *Queries) ListRecentPosts(ctx context.Context, limit int64) ([]Post, error) {
	return q.listPosts(ctx, listRecentPosts, limit)
}

const listRecentPostsByBot = `-- name: ListRecentPostsByBot :many
SELECT id, bot, handle, uri, cid, post_url, source_id, caption, width, height, created_at FROM posts
WHERE bot = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`

type ListRecentPostsByBotParams struct {
	Bot   string `json:"bot"`
	Limit int64  `json:"limit"`
}

func (q *Queries) ListRecentPostsByBot(ctx context.Context, arg ListRecentPostsByBotParams) ([]Post, error) {
	return q.listPosts(ctx, listRecentPostsByBot, arg.Bot, arg.Limit)
}

func (q *Queries) listPosts(ctx context.Context, query string, args ...interface{}) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Post
	for rows.Next() {
		var i Post
		if err := rows.Scan(
			&i.ID,
			&i.Bot,
			&i.Handle,
			&i.Uri,
			&i.Cid,
			&i.PostUrl,
			&i.SourceID,
			&i.Caption,
			&i.Width,
			&i.Height,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countPosts = `-- name: CountPosts :one
SELECT COUNT(*) FROM posts
`

func (q *Queries) CountPosts(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPosts)
	var count int64
	err := row.Scan(&count)
	return count, err
}
