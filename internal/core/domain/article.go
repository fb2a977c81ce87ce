package domain

import "time"

// ArticleTitleMaxLen mirrors the column width of articles.title.
const ArticleTitleMaxLen = 100

// Article is a piece of user-owned content.
type Article struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ArticleView is an article joined with its owner's username, as listed.
type ArticleView struct {
	Article
	Username string `json:"username"`
}
