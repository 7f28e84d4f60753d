package database

import "time"

type User struct {
	Id        int
	Username  string
	Password  string
	IsAdmin   bool
	CreatedAt time.Time
}

type Board struct {
	Id          int
	Name        string
	Description string
	CreatedAt   time.Time
}

type Post struct {
	Id        int
	BoardId   int
	UserId    int
	Title     string
	Content   string
	CreatedAt time.Time
}

type Reply struct {
	Id        int
	PostId    int
	UserId    int
	Content   string
	CreatedAt time.Time
}

// PostListItem is a post row joined with its author and board,
// as shown on listing pages.
type PostListItem struct {
	Id         int
	Title      string
	Content    string
	CreatedAt  time.Time
	AuthorId   int
	AuthorName string
	BoardId    int
	BoardName  string
}

// PostDetail is a single post joined with its author and board.
type PostDetail struct {
	Post
	AuthorName string
	BoardName  string
}

// ReplyListItem is a reply row joined with its author.
type ReplyListItem struct {
	Id         int
	Content    string
	CreatedAt  time.Time
	AuthorId   int
	AuthorName string
}

// ProfileReply is a reply row joined with the post it belongs to,
// as shown on profile pages.
type ProfileReply struct {
	Id        int
	Content   string
	CreatedAt time.Time
	PostId    int
	PostTitle string
}
