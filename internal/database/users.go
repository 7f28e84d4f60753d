package database

import (
	"database/sql"
	"errors"
	"time"
)

func GetUser(db Queryer, userId int) (User, error) {
	row := db.QueryRow(`
		SELECT id, username, password, is_admin, created_at
		FROM users
		WHERE id = ?`, userId)

	return scanUser(row)
}

func GetUserByUsername(db Queryer, username string) (User, error) {
	row := db.QueryRow(`
		SELECT id, username, password, is_admin, created_at
		FROM users
		WHERE username = ?`, username)

	return scanUser(row)
}

func scanUser(row *sql.Row) (User, error) {
	var (
		u         User
		createdAt int64
	)
	err := row.Scan(&u.Id, &u.Username, &u.Password, &u.IsAdmin, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.CreatedAt = time.Unix(createdAt, 0)

	return u, row.Err()
}

func GetUsers(db Queryer) ([]User, error) {
	rows, err := db.Query(`
		SELECT id, username, password, is_admin, created_at
		FROM users
		ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []User
	for rows.Next() {
		var (
			u         User
			createdAt int64
		)
		err := rows.Scan(&u.Id, &u.Username, &u.Password, &u.IsAdmin, &createdAt)
		if err != nil {
			return nil, err
		}
		u.CreatedAt = time.Unix(createdAt, 0)
		result = append(result, u)
	}

	return result, rows.Err()
}

func PutUser(db Queryer, username, passwordHash string, isAdmin bool) (int, error) {
	res, err := db.Exec(`
		INSERT INTO users (username, password, is_admin, created_at)
		VALUES (?, ?, ?, ?)`, username, passwordHash, isAdmin, time.Now().Unix())
	if err != nil {
		if IsUniqueViolation(err) {
			return 0, ErrUsernameTaken
		}
		return 0, err
	}

	userId, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(userId), nil
}

// ToggleAdmin flips the admin flag of the given user.
func ToggleAdmin(db Queryer, userId int) error {
	_, err := db.Exec(`
		UPDATE users SET is_admin = 1 - is_admin
		WHERE id = ?`, userId)
	return err
}

// DeleteUser removes the user; posts and replies they authored go with
// them via cascade.
func DeleteUser(db Queryer, userId int) error {
	_, err := db.Exec(`
		DELETE FROM users
		WHERE id = ?`, userId)
	return err
}
