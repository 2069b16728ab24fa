package bot

import (
	"fmt"
	"strings"

	"github.com/example/skillbuilder/internal/catalog"
	"github.com/example/skillbuilder/internal/forum"
	"github.com/example/skillbuilder/pkg/models"
)

const barWidth = 10

// progressBar renders a percentage as a fixed-width bar
func progressBar(percent int) string {
	filled := percent * barWidth / 100
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat("▓", filled) + strings.Repeat("░", barWidth-filled)
}

func formatStats(stats models.ProgressStats) string {
	if !stats.HasData {
		return "📊 No modules available yet."
	}
	return fmt.Sprintf("📊 Overall progress: %s %d%%\n"+
		"✅ Completed: %d\n"+
		"🔄 In progress: %d\n"+
		"⬜ Not started: %d\n"+
		"📚 Total modules: %d",
		progressBar(stats.CompletionPercentage), stats.CompletionPercentage,
		stats.CompletedModules, stats.InProgressModules, stats.NotStartedModules, stats.TotalModules)
}

func formatBreakdown(domains []models.DomainProgress) string {
	var sb strings.Builder
	sb.WriteString("By domain:\n")
	for _, d := range domains {
		fmt.Fprintf(&sb, "• %s: %d/%d (%d%%)\n", d.Name, d.Completed, d.Total, d.Percentage)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func statusIcon(status string) string {
	switch status {
	case catalog.StatusCompleted:
		return "✅"
	case catalog.StatusInProgress:
		return "🔄"
	default:
		return "⬜"
	}
}

func formatModules(domain *models.Domain, level *models.MasteryLevel, modules []catalog.ModuleStatus) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s · %s\n\n", domain.Name, level.Name)
	if len(modules) == 0 {
		sb.WriteString("No modules at this level yet.")
		return sb.String()
	}
	for _, m := range modules {
		fmt.Fprintf(&sb, "%s %d. %s (module %d)\n", statusIcon(m.Status()), m.OrderIndex, m.Title, m.ID)
		if m.Description != nil {
			fmt.Fprintf(&sb, "    %s\n", *m.Description)
		}
	}
	sb.WriteString("\nUse /complete <module> or /reset <module> to update your progress.")
	return sb.String()
}

func formatPosts(posts []forum.PostSummary) string {
	if len(posts) == 0 {
		return "No posts yet. Start a discussion with /newpost."
	}
	var sb strings.Builder
	sb.WriteString("💬 Community forum\n\n")
	for _, p := range posts {
		fmt.Fprintf(&sb, "#%d %s\n", p.ID, p.Title)
		meta := []string{forum.FormatDate(p.CreatedAt)}
		if p.DomainName != "" {
			meta = append(meta, p.DomainName)
		}
		meta = append(meta,
			fmt.Sprintf("👍 %d", p.Upvotes),
			fmt.Sprintf("👎 %d", p.Downvotes),
			fmt.Sprintf("💬 %d", p.CommentCount))
		fmt.Fprintf(&sb, "    %s\n", strings.Join(meta, " · "))
	}
	sb.WriteString("\nOpen a thread with /post <id>.")
	return sb.String()
}

func formatThread(thread *forum.Thread) string {
	var sb strings.Builder
	p := thread.Post
	fmt.Fprintf(&sb, "#%d %s\n", p.ID, p.Title)
	if thread.Domain != nil {
		fmt.Fprintf(&sb, "%s · ", thread.Domain.Name)
	}
	fmt.Fprintf(&sb, "%s · 👍 %d 👎 %d\n\n%s\n\n", forum.FormatDate(p.CreatedAt), p.Upvotes, p.Downvotes, p.Content)

	fmt.Fprintf(&sb, "Comments (%d)\n", len(thread.Comments))
	if len(thread.Comments) == 0 {
		sb.WriteString("No comments yet. Be the first to comment on this post.\n")
	}
	for _, c := range thread.Comments {
		fmt.Fprintf(&sb, "↳ %s (%s)\n", c.Content, forum.FormatDate(c.CreatedAt))
	}
	fmt.Fprintf(&sb, "\nReply with /comment %d <text>.", p.ID)
	return sb.String()
}

func formatQuestion(q quizQuestionView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question %d of %d\n%s\n\n", q.number, q.total, q.text)
	for i, option := range q.options {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, option)
	}
	sb.WriteString("\nAnswer with /answer <number>.")
	return sb.String()
}

type quizQuestionView struct {
	number, total int
	text          string
	options       []string
}
