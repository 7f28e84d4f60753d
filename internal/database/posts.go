package database

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

const postListColumns = `
	SELECT p.id, p.title, p.content, p.created_at,
	       u.id, u.username, b.id, b.name
	FROM posts p
	JOIN users u ON p.user_id = u.id
	JOIN boards b ON p.board_id = b.id`

func scanPostListItems(rows *sql.Rows) ([]PostListItem, error) {
	defer rows.Close()

	var result []PostListItem
	for rows.Next() {
		var (
			p         PostListItem
			createdAt int64
		)
		err := rows.Scan(
			&p.Id, &p.Title, &p.Content, &createdAt,
			&p.AuthorId, &p.AuthorName, &p.BoardId, &p.BoardName)
		if err != nil {
			return nil, err
		}
		p.CreatedAt = time.Unix(createdAt, 0)
		result = append(result, p)
	}

	return result, rows.Err()
}

// GetPostPage returns one page of posts, newest first, optionally filtered
// by board (boardId 0 means all boards), along with the total matching
// post count for pagination.
func GetPostPage(db Queryer, boardId, page, perPage int) ([]PostListItem, int, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * perPage

	var (
		where string
		args  []any
	)
	if boardId > 0 {
		where = ` WHERE p.board_id = ?`
		args = append(args, boardId)
	}

	var total int
	row := db.QueryRow(`SELECT COUNT(*) FROM posts p`+where, args...)
	if err := row.Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := db.Query(
		postListColumns+where+` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`,
		append(args, perPage, offset)...)
	if err != nil {
		return nil, 0, err
	}

	items, err := scanPostListItems(rows)
	return items, total, err
}

// SearchPosts finds posts whose title or content contains keyword,
// case-insensitively, newest first. LIKE wildcards in the keyword are
// escaped so they match literally. An empty keyword matches nothing.
func SearchPosts(db Queryer, keyword string, page, perPage int) ([]PostListItem, int, error) {
	if keyword == "" {
		return nil, 0, nil
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * perPage

	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(keyword)
	pattern := "%" + escaped + "%"

	const match = ` WHERE p.title LIKE ? ESCAPE '\' OR p.content LIKE ? ESCAPE '\'`

	var total int
	row := db.QueryRow(`SELECT COUNT(*) FROM posts p`+match, pattern, pattern)
	if err := row.Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := db.Query(
		postListColumns+match+` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`,
		pattern, pattern, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	items, err := scanPostListItems(rows)
	return items, total, err
}

// GetUserPosts returns the user's most recent posts, up to limit.
func GetUserPosts(db Queryer, userId, limit int) ([]PostListItem, error) {
	rows, err := db.Query(
		postListColumns+` WHERE p.user_id = ? ORDER BY p.created_at DESC, p.id DESC LIMIT ?`,
		userId, limit)
	if err != nil {
		return nil, err
	}
	return scanPostListItems(rows)
}

func GetPost(db Queryer, postId int) (PostDetail, error) {
	row := db.QueryRow(`
		SELECT p.id, p.board_id, p.user_id, p.title, p.content, p.created_at,
		       u.username, b.name
		FROM posts p
		JOIN users u ON p.user_id = u.id
		JOIN boards b ON p.board_id = b.id
		WHERE p.id = ?`, postId)

	var (
		p         PostDetail
		createdAt int64
	)
	err := row.Scan(
		&p.Id, &p.BoardId, &p.UserId, &p.Title, &p.Content, &createdAt,
		&p.AuthorName, &p.BoardName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PostDetail{}, ErrNotFound
		}
		return PostDetail{}, err
	}
	p.CreatedAt = time.Unix(createdAt, 0)

	return p, row.Err()
}

func PostExists(db Queryer, postId int) (bool, error) {
	row := db.QueryRow(`SELECT 1 FROM posts WHERE id = ?`, postId)

	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func PutPost(db Queryer, boardId, userId int, title, content string) (int, error) {
	res, err := db.Exec(`
		INSERT INTO posts (board_id, user_id, title, content, created_at)
		VALUES (?, ?, ?, ?, ?)`, boardId, userId, title, content, time.Now().Unix())
	if err != nil {
		return 0, err
	}

	postId, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(postId), nil
}

func UpdatePost(db Queryer, postId, boardId int, title, content string) error {
	_, err := db.Exec(`
		UPDATE posts SET board_id = ?, title = ?, content = ?
		WHERE id = ?`, boardId, title, content, postId)
	return err
}

// DeletePost removes the post; its replies go with it via cascade.
func DeletePost(db Queryer, postId int) error {
	_, err := db.Exec(`
		DELETE FROM posts
		WHERE id = ?`, postId)
	return err
}
