package chatbot

import (
	"math/rand"
	"sync"
	"time"
)

var responses = map[Category][]string{
	CategoryGreeting: {
		"Hello! How can I help you with your learning journey today?",
		"Hi there! I'm your Skill Builder assistant. What would you like to learn about?",
		"Welcome to Skill Builder! I'm here to help you master new skills. What are you interested in?",
	},
	CategoryHelp: {
		"I can help you with finding learning resources, answering questions about our courses, or suggesting learning paths based on your interests.",
		"Need assistance? I can guide you through our platform, recommend courses, or answer questions about specific technologies.",
		"I'm here to support your learning journey. Ask me about courses, technologies, or how to get started with a new skill!",
	},
	CategoryCourses: {
		"We offer courses in Web Development, Mobile Development, Data Science, and DevOps. Which area interests you?",
		"Our platform has learning paths for various tech domains including frontend, backend, mobile, data science, and cloud technologies.",
		"Skill Builder provides structured learning paths in multiple domains. You can explore them in the Skills section of our platform.",
	},
	CategoryWebDev: {
		"Our Web Development track covers HTML, CSS, JavaScript, React, Node.js, and more. Would you like to start with frontend or backend?",
		"For web development, we recommend starting with HTML and CSS basics, then moving to JavaScript, and finally learning a framework like React.",
		"Web development is divided into frontend (what users see) and backend (server-side logic). Which aspect are you more interested in?",
	},
	CategoryMobile: {
		"Our Mobile Development track covers iOS (Swift), Android (Kotlin), and cross-platform frameworks like React Native and Flutter.",
		"Mobile app development requires understanding platform-specific guidelines. We recommend starting with the basics of UI design for mobile.",
		"For beginners in mobile development, we suggest exploring React Native as it allows you to build apps for both iOS and Android.",
	},
	CategoryData: {
		"Our Data Science curriculum includes Python, data analysis with pandas, visualization with matplotlib, and machine learning with scikit-learn.",
		"Data Science is a broad field. We recommend starting with Python basics, then learning data manipulation, visualization, and finally machine learning.",
		"For aspiring data scientists, we offer courses on statistical analysis, data cleaning, visualization, and building predictive models.",
	},
	CategoryDevOps: {
		"Our DevOps track covers containerization (Docker), orchestration (Kubernetes), CI/CD pipelines, and cloud platforms like AWS and Azure.",
		"DevOps bridges development and operations. Our courses teach you how to automate deployment, testing, and infrastructure management.",
		"For DevOps learning, we recommend starting with Linux basics, then Docker, followed by CI/CD concepts and cloud services.",
	},
	CategoryProgress: {
		"You can track your learning progress in the Progress Report section. It shows your completion rates across different domains.",
		"The Progress dashboard visualizes your learning journey and helps identify areas where you might need to focus more.",
		"Check your Progress Report regularly to see how far you've come and what's next in your learning path.",
	},
	CategoryFallback: {
		"I'm not sure I understand. Could you rephrase your question?",
		"I don't have information on that topic yet. Would you like to know about our available courses instead?",
		"I'm still learning! Could you try asking about our courses, learning paths, or how to use the platform?",
	},
}

// Responses returns the canned replies of a category
func Responses(category Category) []string {
	list, ok := responses[category]
	if !ok {
		list = responses[CategoryFallback]
	}
	return append([]string(nil), list...)
}

// Responder picks canned replies at random. It is safe for concurrent use.
type Responder struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewResponder creates a responder seeded from the clock
func NewResponder() *Responder {
	return NewResponderWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewResponderWithSource creates a responder over a fixed random source
func NewResponderWithSource(src rand.Source) *Responder {
	return &Responder{rnd: rand.New(src)}
}

// Reply categorizes message and returns one of the category's replies.
// It never returns an empty string.
func (r *Responder) Reply(message string) string {
	return r.ReplyTo(Categorize(message))
}

// ReplyTo returns a random reply of category
func (r *Responder) ReplyTo(category Category) string {
	list, ok := responses[category]
	if !ok {
		list = responses[CategoryFallback]
	}
	return list[r.intn(len(list))]
}

// TypingDelay returns a uniformly distributed delay in [min, max)
func (r *Responder) TypingDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(r.int63n(int64(max-min)))
}

func (r *Responder) intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}

func (r *Responder) int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Int63n(n)
}
