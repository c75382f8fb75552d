package gemini

import "fmt"

// Тексты правил и стилей по умолчанию, подставляемые в промпт.
const (
	defaultRules = "Standard Reddit etiquette"
	defaultStyle = "casual"
)

// BuildGeneratePrompt собирает промпт генерации поста из названия
// сабреддита, темы, стиля и текста правил.
func BuildGeneratePrompt(subreddit, topic, style, rules string) string {
	if rules == "" {
		rules = defaultRules
	}
	if style == "" {
		style = defaultStyle
	}
	return fmt.Sprintf(`You are an expert Reddit post creator. Create an engaging post for r/%s.

**Subreddit Rules:**
%s

**Topic:** %s
**Style:** %s

**Instructions:**
1. Create a catchy title
2. Write engaging content matching the style
3. Follow ALL subreddit rules
4. Be natural and conversational

**IMPORTANT: Respond ONLY with valid JSON, no markdown:**
{
  "title": "Your post title",
  "content": "Your post content"
}`, subreddit, rules, topic, style)
}

// BuildOptimizePrompt собирает промпт оптимизации существующего поста.
func BuildOptimizePrompt(subreddit, postContent, style, rules string) string {
	if rules == "" {
		rules = "Standard etiquette"
	}
	if style == "" {
		style = "improve"
	}
	return fmt.Sprintf(`Optimize this Reddit post for r/%s.

**Rules:** %s
**Original:** %s
**Style:** %s

Respond with ONLY the optimized text, no explanations.`, subreddit, rules, postContent, style)
}
