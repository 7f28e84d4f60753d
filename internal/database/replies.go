package database

import "time"

// GetReplies returns every reply to a post, oldest first.
func GetReplies(db Queryer, postId int) ([]ReplyListItem, error) {
	rows, err := db.Query(`
		SELECT r.id, r.content, r.created_at, u.id, u.username
		FROM replies r
		JOIN users u ON r.user_id = u.id
		WHERE r.post_id = ?
		ORDER BY r.created_at ASC, r.id ASC`, postId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ReplyListItem
	for rows.Next() {
		var (
			r         ReplyListItem
			createdAt int64
		)
		if err := rows.Scan(&r.Id, &r.Content, &createdAt, &r.AuthorId, &r.AuthorName); err != nil {
			return nil, err
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		result = append(result, r)
	}

	return result, rows.Err()
}

// GetUserReplies returns the user's most recent replies with the title of
// the post each one belongs to, up to limit.
func GetUserReplies(db Queryer, userId, limit int) ([]ProfileReply, error) {
	rows, err := db.Query(`
		SELECT r.id, r.content, r.created_at, p.id, p.title
		FROM replies r
		JOIN posts p ON r.post_id = p.id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ?`, userId, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ProfileReply
	for rows.Next() {
		var (
			r         ProfileReply
			createdAt int64
		)
		if err := rows.Scan(&r.Id, &r.Content, &createdAt, &r.PostId, &r.PostTitle); err != nil {
			return nil, err
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		result = append(result, r)
	}

	return result, rows.Err()
}

func PutReply(db Queryer, postId, userId int, content string) (int, error) {
	res, err := db.Exec(`
		INSERT INTO replies (post_id, user_id, content, created_at)
		VALUES (?, ?, ?, ?)`, postId, userId, content, time.Now().Unix())
	if err != nil {
		return 0, err
	}

	replyId, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(replyId), nil
}
