package database

import (
	"time"

	"github.com/example/skillbuilder/pkg/models"
)

// Seed is the dataset a store starts with
type Seed struct {
	Domains     []models.Domain
	Levels      []models.MasteryLevel
	Modules     []models.Module
	Quizzes     []models.Quiz
	Progress    []models.UserProgress
	QuizResults []models.UserQuizResult
	Posts       []models.ForumPost
	Comments    []models.ForumComment
}

func strPtr(s string) *string { return &s }

func int64Ptr(i int64) *int64 { return &i }

func mustTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func timePtr(value string) *time.Time {
	t := mustTime(value)
	return &t
}

// DefaultSeed returns a fresh copy of the catalog, progress and forum data
// the platform ships with. User "user-1" has completed 3 of the 8 modules.
func DefaultSeed() Seed {
	return Seed{
		Domains: []models.Domain{
			{ID: 1, Name: "Web Development", Description: strPtr("Learn frontend and backend web development")},
			{ID: 2, Name: "Mobile Development", Description: strPtr("Build mobile applications for iOS and Android")},
			{ID: 3, Name: "Data Science", Description: strPtr("Learn data analysis, visualization, and machine learning")},
			{ID: 4, Name: "DevOps", Description: strPtr("Master CI/CD, containerization, and cloud deployment")},
		},
		Levels: []models.MasteryLevel{
			{ID: 1, Name: "Beginner", Description: strPtr("Fundamentals and basic concepts")},
			{ID: 2, Name: "Intermediate", Description: strPtr("Advanced concepts and practical applications")},
			{ID: 3, Name: "Advanced", Description: strPtr("Expert-level techniques and best practices")},
		},
		Modules: []models.Module{
			{ID: 1, DomainID: 1, MasteryLevelID: 1, Title: "HTML Fundamentals", Description: strPtr("Learn the basics of HTML markup language"), OrderIndex: 1},
			{ID: 2, DomainID: 1, MasteryLevelID: 1, Title: "CSS Basics", Description: strPtr("Style your web pages with CSS"), OrderIndex: 2},
			{ID: 3, DomainID: 1, MasteryLevelID: 1, Title: "JavaScript Introduction", Description: strPtr("Get started with JavaScript programming"), OrderIndex: 3},
			{ID: 4, DomainID: 1, MasteryLevelID: 2, Title: "React Fundamentals", Description: strPtr("Build interactive UIs with React"), OrderIndex: 1},
			{ID: 5, DomainID: 2, MasteryLevelID: 1, Title: "Mobile App Basics", Description: strPtr("Introduction to mobile app development"), OrderIndex: 1},
			{ID: 6, DomainID: 3, MasteryLevelID: 1, Title: "Python for Data Science", Description: strPtr("Learn Python basics for data analysis"), OrderIndex: 1},
			{ID: 7, DomainID: 3, MasteryLevelID: 1, Title: "Data Visualization", Description: strPtr("Create effective data visualizations"), OrderIndex: 2},
			{ID: 8, DomainID: 4, MasteryLevelID: 1, Title: "Docker Basics", Description: strPtr("Introduction to containerization with Docker"), OrderIndex: 1},
		},
		Quizzes: []models.Quiz{
			{
				ID: 1, ModuleID: 1, Title: "HTML Basics Quiz",
				Questions: []models.QuizQuestion{
					{
						ID: 1, QuizID: 1, Question: "What does HTML stand for?", OrderIndex: 1,
						Answers: []models.QuizAnswer{
							{ID: 1, QuestionID: 1, Answer: "Hyper Text Markup Language", IsCorrect: true},
							{ID: 2, QuestionID: 1, Answer: "Hyper Transfer Markup Language"},
							{ID: 3, QuestionID: 1, Answer: "Hyper Text Markdown Language"},
							{ID: 4, QuestionID: 1, Answer: "High Tech Markup Language"},
						},
					},
					{
						ID: 2, QuizID: 1, Question: "Which tag is used to create a hyperlink?", OrderIndex: 2,
						Answers: []models.QuizAnswer{
							{ID: 5, QuestionID: 2, Answer: "<a>", IsCorrect: true},
							{ID: 6, QuestionID: 2, Answer: "<link>"},
							{ID: 7, QuestionID: 2, Answer: "<href>"},
							{ID: 8, QuestionID: 2, Answer: "<url>"},
						},
					},
				},
			},
			{
				ID: 2, ModuleID: 2, Title: "CSS Basics Quiz",
				Questions: []models.QuizQuestion{
					{
						ID: 3, QuizID: 2, Question: "Which property is used to change the text color?", OrderIndex: 1,
						Answers: []models.QuizAnswer{
							{ID: 9, QuestionID: 3, Answer: "color", IsCorrect: true},
							{ID: 10, QuestionID: 3, Answer: "text-color"},
							{ID: 11, QuestionID: 3, Answer: "font-color"},
							{ID: 12, QuestionID: 3, Answer: "text-style"},
						},
					},
				},
			},
		},
		Progress: []models.UserProgress{
			{ID: 1, UserID: "user-1", ModuleID: 1, IsCompleted: true, CompletedAt: timePtr("2023-06-15T10:30:00Z")},
			{ID: 2, UserID: "user-1", ModuleID: 2, IsCompleted: true, CompletedAt: timePtr("2023-06-20T14:45:00Z")},
			{ID: 3, UserID: "user-1", ModuleID: 3},
			{ID: 4, UserID: "user-1", ModuleID: 6, IsCompleted: true, CompletedAt: timePtr("2023-07-05T09:15:00Z")},
			{ID: 5, UserID: "user-1", ModuleID: 7},
		},
		QuizResults: []models.UserQuizResult{
			{ID: 1, UserID: "user-1", QuizID: 1, Score: 85, CompletedAt: mustTime("2023-06-15T11:00:00Z")},
			{ID: 2, UserID: "user-1", QuizID: 2, Score: 70, CompletedAt: mustTime("2023-06-20T15:30:00Z")},
		},
		Posts: []models.ForumPost{
			{
				ID: 1, UserID: "user-1", Title: "How to center a div?",
				Content:  "I'm having trouble centering a div horizontally and vertically. Any tips?",
				DomainID: int64Ptr(1), Upvotes: 5,
				CreatedAt: mustTime("2023-06-10T09:15:00Z"), UpdatedAt: mustTime("2023-06-10T09:15:00Z"),
			},
			{
				ID: 2, UserID: "user-1", Title: "Best practices for React state management",
				Content:  "What are the current best practices for managing state in a React application?",
				DomainID: int64Ptr(1), Upvotes: 8, Downvotes: 1,
				CreatedAt: mustTime("2023-06-12T14:30:00Z"), UpdatedAt: mustTime("2023-06-12T14:30:00Z"),
			},
		},
		Comments: []models.ForumComment{
			{
				ID: 1, PostID: 1, UserID: "user-1",
				Content:   "You can use flexbox with justify-content: center and align-items: center.",
				Upvotes:   3,
				CreatedAt: mustTime("2023-06-10T10:20:00Z"), UpdatedAt: mustTime("2023-06-10T10:20:00Z"),
			},
		},
	}
}
