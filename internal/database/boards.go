package database

import (
	"database/sql"
	"errors"
	"time"
)

func GetBoards(db Queryer) ([]Board, error) {
	rows, err := db.Query(`
		SELECT id, name, COALESCE(description, ''), created_at
		FROM boards
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Board
	for rows.Next() {
		var (
			b         Board
			createdAt int64
		)
		if err := rows.Scan(&b.Id, &b.Name, &b.Description, &createdAt); err != nil {
			return nil, err
		}
		b.CreatedAt = time.Unix(createdAt, 0)
		result = append(result, b)
	}

	return result, rows.Err()
}

func GetBoard(db Queryer, boardId int) (Board, error) {
	row := db.QueryRow(`
		SELECT id, name, COALESCE(description, ''), created_at
		FROM boards
		WHERE id = ?`, boardId)

	var (
		b         Board
		createdAt int64
	)
	err := row.Scan(&b.Id, &b.Name, &b.Description, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Board{}, ErrNotFound
		}
		return Board{}, err
	}
	b.CreatedAt = time.Unix(createdAt, 0)

	return b, row.Err()
}

func BoardExists(db Queryer, boardId int) (bool, error) {
	row := db.QueryRow(`SELECT 1 FROM boards WHERE id = ?`, boardId)

	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// PutBoard inserts a new board, returning ErrBoardNameTaken when the name
// collides with an existing board.
func PutBoard(db Queryer, name, description string) (int, error) {
	res, err := db.Exec(`
		INSERT INTO boards (name, description, created_at)
		VALUES (?, ?, ?)`, name, description, time.Now().Unix())
	if err != nil {
		if IsUniqueViolation(err) {
			return 0, ErrBoardNameTaken
		}
		return 0, err
	}

	boardId, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(boardId), nil
}

// DeleteBoard removes the board; its posts and their replies go with it
// via cascade.
func DeleteBoard(db Queryer, boardId int) error {
	_, err := db.Exec(`
		DELETE FROM boards
		WHERE id = ?`, boardId)
	return err
}
