package gemini

import (
	"encoding/json"
	"strings"
)

// Пределы и значения по умолчанию при разборе ответа модели.
const (
	maxFallbackContentLen = 2000
	defaultTitle          = "Generated Post"
)

// Post представляет разобранный ответ модели: заголовок и тело поста.
type Post struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ExtractPost извлекает из ответа модели первый JSON-объект вида
// {title, content}, даже если он окружен посторонним текстом. Если
// JSON не найден или не разбирается, сырой текст (обрезанный до 2000
// символов) становится телом поста с заголовком по умолчанию.
func ExtractPost(raw string) Post {
	if jsonPart, ok := firstJSONObject(raw); ok {
		var post Post
		if err := json.Unmarshal([]byte(jsonPart), &post); err == nil && post.Content != "" {
			if post.Title == "" {
				post.Title = defaultTitle
			}
			return post
		}
	}

	content := raw
	if runes := []rune(content); len(runes) > maxFallbackContentLen {
		content = string(runes[:maxFallbackContentLen])
	}
	return Post{
		Title:   defaultTitle,
		Content: content,
	}
}

// firstJSONObject возвращает подстроку от первой '{' до последней '}'.
func firstJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}
