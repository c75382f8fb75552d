package models

import "time"

// PostTypeGenerated — тип записи в истории постов. Оптимизированные
// посты в историю не попадают.
const PostTypeGenerated = "generated"

// HistoryItem представляет одну запись в истории сгенерированных постов.
// История — append-only журнал, записи не редактируются.
type HistoryItem struct {
	ID        int       `json:"id"`
	UserID    string    `json:"user_id"`
	Subreddit string    `json:"subreddit"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	PostType  string    `json:"post_type"`
	CreatedAt time.Time `json:"created_at"`
}

// GeneratePostRequest используется для приёма данных из JSON-запроса
// на генерацию поста.
type GeneratePostRequest struct {
	Subreddit string `json:"subreddit" validate:"required"`
	Topic     string `json:"topic" validate:"required"`
	Style     string `json:"style"`
	Rules     string `json:"rules"`
}

// OptimizePostRequest используется для приёма данных из JSON-запроса
// на оптимизацию существующего поста.
type OptimizePostRequest struct {
	Subreddit string `json:"subreddit" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Style     string `json:"style"`
	Rules     string `json:"rules"`
}
