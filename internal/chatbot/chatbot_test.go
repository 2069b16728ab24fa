package chatbot

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		message string
		want    Category
	}{
		{"Hello there", CategoryGreeting},
		{"HEY", CategoryGreeting},
		{"I need support", CategoryHelp},
		{"Any course for me?", CategoryCourses},
		{"Tell me about CSS", CategoryWebDev},
		{"Android", CategoryMobile},
		{"Python", CategoryData},
		{"docker", CategoryDevOps},
		{"Show my progress", CategoryProgress},
		{"Quantum physics", CategoryFallback},
		{"", CategoryFallback},
		// substring matching, not whole words
		{"this", CategoryGreeting},
		{"machine learning", CategoryGreeting},
		// earlier rules win
		{"help me set up docker", CategoryHelp},
		{"React app", CategoryWebDev},
		{"web analytics", CategoryWebDev},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.message))
		})
	}
}

func TestResponses_EveryCategoryHasThree(t *testing.T) {
	for _, c := range []Category{
		CategoryGreeting, CategoryHelp, CategoryCourses, CategoryWebDev, CategoryMobile,
		CategoryData, CategoryDevOps, CategoryProgress, CategoryFallback,
	} {
		list := Responses(c)
		assert.Len(t, list, 3, c)
		for _, r := range list {
			assert.NotEmpty(t, r)
		}
	}
	assert.Equal(t, Responses(CategoryFallback), Responses(Category("unknown")))
}

func TestResponder_ReplyComesFromCategory(t *testing.T) {
	r := NewResponderWithSource(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		assert.Contains(t, Responses(CategoryDevOps), r.Reply("kubernetes"))
		assert.Contains(t, Responses(CategoryFallback), r.Reply("Quantum physics"))
	}
}

func TestResponder_UsesEveryReply(t *testing.T) {
	r := NewResponderWithSource(rand.NewSource(7))

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[r.ReplyTo(CategoryGreeting)] = true
	}
	assert.Len(t, seen, 3)
}

func TestResponder_TypingDelay(t *testing.T) {
	r := NewResponderWithSource(rand.NewSource(3))

	for i := 0; i < 100; i++ {
		d := r.TypingDelay(time.Second, 2*time.Second)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 2*time.Second)
	}
	assert.Equal(t, time.Second, r.TypingDelay(time.Second, time.Second))
}

func TestConversation(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := newConversation(NewResponderWithSource(rand.NewSource(1)), func() time.Time { return now })
	require.NotEmpty(t, c.ID)

	messages := c.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, WelcomeMessage, messages[0].Content)
	assert.Equal(t, SenderBot, messages[0].Sender)

	_, err := c.Send("   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Len(t, c.Messages(), 1)

	reply, err := c.Send("  hello ")
	require.NoError(t, err)
	assert.Equal(t, SenderBot, reply.Sender)
	assert.Contains(t, Responses(CategoryGreeting), reply.Content)
	assert.Equal(t, now, reply.Timestamp)

	messages = c.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, "hello", messages[1].Content)
	assert.Equal(t, SenderUser, messages[1].Sender)

	ids := map[string]bool{}
	for _, m := range messages {
		ids[m.ID] = true
	}
	assert.Len(t, ids, 3)
}

func TestPause(t *testing.T) {
	assert.NoError(t, Pause(context.Background(), time.Millisecond))
	assert.NoError(t, Pause(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Pause(ctx, time.Hour), context.Canceled)
}
