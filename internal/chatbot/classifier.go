package chatbot

import "strings"

// Category is the topic a chat message is routed to
type Category string

const (
	CategoryGreeting Category = "greeting"
	CategoryHelp     Category = "help"
	CategoryCourses  Category = "courses"
	CategoryWebDev   Category = "webdev"
	CategoryMobile   Category = "mobile"
	CategoryData     Category = "data"
	CategoryDevOps   Category = "devops"
	CategoryProgress Category = "progress"
	CategoryFallback Category = "fallback"
)

type rule struct {
	category Category
	keywords []string
}

// rules are evaluated in order and the first match wins. Keywords match as
// plain substrings, so "this" counts as a greeting.
var rules = []rule{
	{CategoryGreeting, []string{"hello", "hi", "hey"}},
	{CategoryHelp, []string{"help", "support", "assist"}},
	{CategoryCourses, []string{"course", "learn", "study"}},
	{CategoryWebDev, []string{"web", "html", "css", "javascript", "react"}},
	{CategoryMobile, []string{"mobile", "app", "android", "ios", "flutter"}},
	{CategoryData, []string{"data", "python", "machine learning", "analytics"}},
	{CategoryDevOps, []string{"devops", "docker", "kubernetes", "cloud"}},
	{CategoryProgress, []string{"progress", "track", "report"}},
}

// Categorize returns the category of message
func Categorize(message string) Category {
	lower := strings.ToLower(message)
	for _, r := range rules {
		for _, keyword := range r.keywords {
			if strings.Contains(lower, keyword) {
				return r.category
			}
		}
	}
	return CategoryFallback
}
