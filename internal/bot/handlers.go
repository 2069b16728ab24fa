package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/skillbuilder/internal/auth"
	"github.com/example/skillbuilder/internal/catalog"
	"github.com/example/skillbuilder/internal/chatbot"
	"github.com/example/skillbuilder/internal/database"
	"github.com/example/skillbuilder/internal/quiz"
	"github.com/example/skillbuilder/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// States of multi-step interactions
const (
	actionNewPost = "new_post"

	stepPostTitle   = 0
	stepPostContent = 1
)

const welcomeText = `Welcome to Skill Builder! 🎓

Available commands:
/login <email> <password> - Sign in
/signup <username> <email> <password> - Create an account
/logout - Sign out
/skills - Browse domains
/modules <domain> <level> - List modules of a level
/complete <module> - Mark a module as completed
/reset <module> - Mark a module as in progress
/progress - Show your progress
/report - Download your progress report
/quiz <module> - Take the module quiz
/forum [domain] - Browse the community forum
/post <id> - Read a thread
/newpost [domain] - Start a discussion
/comment <post> <text> - Reply to a thread
/digest - Send today's progress digest now
/menu - Show main menu

Any other message goes to the Skill Builder assistant.`

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message == nil || message.Chat == nil {
		return fmt.Errorf("invalid message: required fields are missing")
	}
	chatID := message.Chat.ID
	args := strings.Fields(message.CommandArguments())

	switch message.Command() {
	case "start", "help":
		msg := tgbotapi.NewMessage(chatID, welcomeText)
		msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
		return b.sendMessage(msg)
	case "menu":
		return b.showMainMenu(chatID)
	case "login":
		return b.handleLogin(chatID, args)
	case "signup":
		return b.handleSignUp(chatID, args)
	case "logout":
		b.svc.Sessions.Clear(chatID)
		b.resetChat(chatID)
		return b.sendText(chatID, "You have been signed out.")
	case "cancel":
		b.setState(chatID, nil)
		return b.sendText(chatID, "Cancelled.")
	}

	user, ok, err := b.currentUser(chatID)
	if !ok {
		return err
	}

	switch message.Command() {
	case "skills":
		return b.handleSkills(ctx, chatID)
	case "domain":
		id, err := intArg(args, 0)
		if err != nil {
			return b.sendText(chatID, "Usage: /domain <domain id>")
		}
		return b.handleDomain(ctx, chatID, id)
	case "modules":
		domainID, err1 := intArg(args, 0)
		levelID, err2 := intArg(args, 1)
		if err1 != nil || err2 != nil {
			return b.sendText(chatID, "Usage: /modules <domain id> <level id>")
		}
		return b.handleModules(ctx, chatID, user.ID, domainID, levelID)
	case "complete", "reset":
		moduleID, err := intArg(args, 0)
		if err != nil {
			return b.sendText(chatID, fmt.Sprintf("Usage: /%s <module id>", message.Command()))
		}
		return b.handleUpdateProgress(ctx, chatID, user.ID, moduleID, message.Command() == "complete")
	case "progress":
		return b.handleProgress(ctx, chatID, user.ID)
	case "report":
		return b.handleReport(ctx, chatID, *user)
	case "quiz":
		moduleID, err := intArg(args, 0)
		if err != nil {
			return b.sendText(chatID, "Usage: /quiz <module id>")
		}
		return b.handleQuiz(ctx, chatID, moduleID)
	case "answer":
		choice, err := intArg(args, 0)
		if err != nil {
			return b.sendText(chatID, "Usage: /answer <option number>")
		}
		return b.handleAnswer(ctx, chatID, user.ID, int(choice))
	case "forum":
		var domainID *int64
		if id, err := intArg(args, 0); err == nil {
			domainID = &id
		}
		return b.handleForum(ctx, chatID, domainID)
	case "post":
		postID, err := intArg(args, 0)
		if err != nil {
			return b.sendText(chatID, "Usage: /post <post id>")
		}
		return b.handleThread(ctx, chatID, postID)
	case "newpost":
		state := &UserState{Action: actionNewPost, Step: stepPostTitle, Data: map[string]string{}}
		if len(args) > 0 {
			state.Data["domain"] = args[0]
		}
		b.setState(chatID, state)
		return b.sendText(chatID, "What is the title of your post? Send /cancel to stop.")
	case "comment":
		postID, err := intArg(args, 0)
		if err != nil || len(args) < 2 {
			return b.sendText(chatID, "Usage: /comment <post id> <text>")
		}
		text := strings.Join(args[1:], " ")
		return b.handleComment(ctx, chatID, user.ID, postID, text)
	case "digest":
		b.mu.Lock()
		digests := b.digests
		b.mu.Unlock()
		if digests == nil {
			return b.sendText(chatID, "Daily digests are disabled.")
		}
		return digests.RunManualCheck(ctx, chatID)
	case "adddomain":
		if message.From == nil || !b.isAdmin(message.From.ID) {
			msg := tgbotapi.NewMessage(chatID, "This command is only available for administrators.")
			msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
			return b.sendMessage(msg)
		}
		return b.handleAddDomain(ctx, chatID, message.CommandArguments())
	default:
		return b.handleUnknownCommand(chatID)
	}
}

// HandleText handles plain messages: pending multi-step input first, the
// assistant otherwise
func (b *Bot) HandleText(ctx context.Context, message *tgbotapi.Message) error {
	if message.Chat == nil {
		return fmt.Errorf("invalid message: chat is missing")
	}
	chatID := message.Chat.ID

	user, ok, err := b.currentUser(chatID)
	if !ok {
		return err
	}

	if state, ok := b.state(chatID); ok {
		switch state.Action {
		case actionNewPost:
			return b.continueNewPost(ctx, chatID, user.ID, message.Text)
		}
	}

	return b.handleChat(ctx, chatID, message.Text)
}

func (b *Bot) handleLogin(chatID int64, args []string) error {
	if len(args) != 2 {
		return b.sendText(chatID, "Usage: /login <email> <password>")
	}
	user, err := b.svc.Auth.SignIn(args[0], args[1])
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return b.sendText(chatID, "Invalid email or password.")
	}
	if err != nil {
		return err
	}
	if err := b.svc.Sessions.Save(chatID, user); err != nil {
		return err
	}
	b.log.Info("User signed in", "chat_id", chatID, "user_id", user.ID)

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Welcome back, %s!", user.DisplayName()))
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleSignUp(chatID int64, args []string) error {
	if len(args) != 3 {
		return b.sendText(chatID, "Usage: /signup <username> <email> <password>")
	}
	user, err := b.svc.Auth.SignUp(args[0], args[1], args[2])
	switch {
	case errors.Is(err, auth.ErrAccountExists):
		return b.sendText(chatID, "An account with this email or username already exists.")
	case errors.Is(err, auth.ErrInvalidInput):
		return b.sendText(chatID, "Username, email and password are required.")
	case err != nil:
		return err
	}
	if err := b.svc.Sessions.Save(chatID, user); err != nil {
		return err
	}
	b.log.Info("User signed up", "chat_id", chatID, "user_id", user.ID)

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Account created. Welcome, %s!", user.DisplayName()))
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

func (b *Bot) handleSkills(ctx context.Context, chatID int64) error {
	domains, err := b.svc.Catalog.Domains(ctx)
	if err != nil {
		return err
	}
	var sb strings.Builder
	sb.WriteString("📚 Choose a domain to explore:\n\n")
	var buttons [][]MenuButton
	for _, d := range domains {
		fmt.Fprintf(&sb, "%d. %s", d.ID, d.Name)
		if d.Description != nil {
			fmt.Fprintf(&sb, " - %s", *d.Description)
		}
		sb.WriteString("\n")
		buttons = append(buttons, []MenuButton{{Text: d.Name, CallbackData: fmt.Sprintf("domain_%d", d.ID)}})
	}
	buttons = append(buttons, []MenuButton{{Text: "⬅️ Main menu", CallbackData: "main_menu"}})

	msg := tgbotapi.NewMessage(chatID, strings.TrimRight(sb.String(), "\n"))
	msg.ReplyMarkup = createKeyboard(buttons)
	return b.sendMessage(msg)
}

func (b *Bot) handleDomain(ctx context.Context, chatID, domainID int64) error {
	domain, err := b.svc.Catalog.Domain(ctx, domainID)
	if errors.Is(err, database.ErrNotFound) {
		return b.sendText(chatID, "Domain not found. Use /skills to see all domains.")
	}
	if err != nil {
		return err
	}
	levels, err := b.svc.Catalog.MasteryLevels(ctx)
	if err != nil {
		return err
	}

	text := domain.Name
	if domain.Description != nil {
		text += "\n" + *domain.Description
	}
	text += "\n\nChoose a mastery level:"

	var row []MenuButton
	for _, l := range levels {
		row = append(row, MenuButton{Text: l.Name, CallbackData: fmt.Sprintf("modules_%d_%d", domain.ID, l.ID)})
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{row, {{Text: "⬅️ Domains", CallbackData: "skills"}}})
	return b.sendMessage(msg)
}

func (b *Bot) handleModules(ctx context.Context, chatID int64, userID string, domainID, levelID int64) error {
	modules, err := b.svc.Catalog.Modules(ctx, userID, domainID, levelID)
	if errors.Is(err, database.ErrNotFound) {
		return b.sendText(chatID, "Domain or mastery level not found.")
	}
	if err != nil {
		return err
	}
	domain, err := b.svc.Catalog.Domain(ctx, domainID)
	if err != nil {
		return err
	}
	levels, err := b.svc.Catalog.MasteryLevels(ctx)
	if err != nil {
		return err
	}
	var level models.MasteryLevel
	for _, l := range levels {
		if l.ID == levelID {
			level = l
		}
	}

	var buttons [][]MenuButton
	for _, m := range modules {
		if m.Status() != catalog.StatusCompleted {
			buttons = append(buttons, []MenuButton{{Text: "✅ " + m.Title, CallbackData: fmt.Sprintf("complete_%d", m.ID)}})
		}
	}
	buttons = append(buttons, []MenuButton{{Text: "⬅️ Levels", CallbackData: fmt.Sprintf("domain_%d", domainID)}})

	msg := tgbotapi.NewMessage(chatID, formatModules(domain, &level, modules))
	msg.ReplyMarkup = createKeyboard(buttons)
	return b.sendMessage(msg)
}

func (b *Bot) handleUpdateProgress(ctx context.Context, chatID int64, userID string, moduleID int64, completed bool) error {
	record, err := b.svc.Progress.Update(ctx, userID, moduleID, completed)
	if errors.Is(err, database.ErrNotFound) {
		return b.sendText(chatID, "Module not found.")
	}
	if err != nil {
		return err
	}
	module, err := b.svc.Catalog.Module(ctx, record.ModuleID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("🔄 \"%s\" is now in progress.", module.Title)
	if record.IsCompleted {
		text = fmt.Sprintf("✅ \"%s\" marked as completed.", module.Title)
	}
	stats, err := b.svc.Progress.Stats(ctx, userID)
	if err != nil {
		return err
	}
	return b.sendText(chatID, text+"\n\n"+formatStats(stats))
}

func (b *Bot) handleProgress(ctx context.Context, chatID int64, userID string) error {
	stats, err := b.svc.Progress.Stats(ctx, userID)
	if err != nil {
		return err
	}
	text := formatStats(stats)
	if stats.HasData {
		domains, err := b.svc.Progress.Breakdown(ctx, userID)
		if err != nil {
			return err
		}
		text += "\n\n" + formatBreakdown(domains)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "📄 Download report", CallbackData: "report"}},
		{{Text: "⬅️ Main menu", CallbackData: "main_menu"}},
	})
	return b.sendMessage(msg)
}

func (b *Bot) handleQuiz(ctx context.Context, chatID, moduleID int64) error {
	quizzes, err := b.svc.Quiz.ForModule(ctx, moduleID)
	if errors.Is(err, database.ErrNotFound) {
		return b.sendText(chatID, "Module not found.")
	}
	if err != nil {
		return err
	}
	if len(quizzes) == 0 {
		return b.sendText(chatID, "This module has no quiz yet.")
	}

	attempt := quiz.NewAttempt(quizzes[0], nil)
	b.mu.Lock()
	b.attempts[chatID] = attempt
	b.mu.Unlock()

	if err := b.sendText(chatID, fmt.Sprintf("📝 %s (%d questions)", attempt.Quiz.Title, attempt.Total())); err != nil {
		return err
	}
	return b.sendQuestion(chatID, attempt)
}

func (b *Bot) sendQuestion(chatID int64, attempt *quiz.Attempt) error {
	q, n, ok := attempt.Current()
	if !ok {
		return nil
	}
	view := quizQuestionView{number: n, total: attempt.Total(), text: q.Text}
	var row []MenuButton
	for i, o := range q.Options {
		view.options = append(view.options, o.Answer)
		row = append(row, MenuButton{Text: strconv.Itoa(i + 1), CallbackData: fmt.Sprintf("answer_%d", i+1)})
	}
	msg := tgbotapi.NewMessage(chatID, formatQuestion(view))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{row})
	return b.sendMessage(msg)
}

func (b *Bot) handleAnswer(ctx context.Context, chatID int64, userID string, choice int) error {
	b.mu.Lock()
	attempt, ok := b.attempts[chatID]
	b.mu.Unlock()
	if !ok {
		return b.sendText(chatID, "No quiz in progress. Start one with /quiz <module id>.")
	}

	done, err := attempt.Answer(choice)
	if errors.Is(err, quiz.ErrInvalidInput) {
		return b.sendText(chatID, strings.TrimPrefix(err.Error(), quiz.ErrInvalidInput.Error()+": "))
	}
	if err != nil {
		return err
	}
	if !done {
		return b.sendQuestion(chatID, attempt)
	}

	// Answer reports done to exactly one caller, which submits
	b.mu.Lock()
	if b.attempts[chatID] == attempt {
		delete(b.attempts, chatID)
	}
	b.mu.Unlock()

	result, err := b.svc.Quiz.Submit(ctx, userID, attempt.Quiz.ID, attempt.Selections())
	if err != nil {
		return err
	}
	return b.sendText(chatID, fmt.Sprintf("🏁 %s finished! Your score: %d%%", attempt.Quiz.Title, result.Score))
}

func (b *Bot) handleForum(ctx context.Context, chatID int64, domainID *int64) error {
	posts, err := b.svc.Forum.Posts(ctx, domainID)
	if err != nil {
		return err
	}
	var buttons [][]MenuButton
	for _, p := range posts {
		buttons = append(buttons, []MenuButton{{Text: p.Title, CallbackData: fmt.Sprintf("post_%d", p.ID)}})
	}
	buttons = append(buttons, []MenuButton{{Text: "⬅️ Main menu", CallbackData: "main_menu"}})

	msg := tgbotapi.NewMessage(chatID, formatPosts(posts))
	msg.ReplyMarkup = createKeyboard(buttons)
	return b.sendMessage(msg)
}

func (b *Bot) handleThread(ctx context.Context, chatID, postID int64) error {
	thread, err := b.svc.Forum.Thread(ctx, postID)
	if errors.Is(err, database.ErrNotFound) {
		return b.sendText(chatID, "Post not found.")
	}
	if err != nil {
		return err
	}
	return b.sendText(chatID, formatThread(thread))
}

func (b *Bot) continueNewPost(ctx context.Context, chatID int64, userID string, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return b.sendText(chatID, "Please send some text, or /cancel.")
	}

	data, finished, ok := b.advanceNewPost(chatID, text)
	if !ok {
		return nil
	}
	if !finished {
		return b.sendText(chatID, "Now send the content of your post.")
	}

	var domainID *int64
	if raw, ok := data["domain"]; ok {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			domainID = &id
		}
	}
	post, err := b.svc.Forum.CreatePost(ctx, userID, data["title"], text, domainID)
	if errors.Is(err, database.ErrNotFound) {
		return b.sendText(chatID, "Domain not found, the post was not created.")
	}
	if err != nil {
		return err
	}
	return b.sendText(chatID, fmt.Sprintf("Post created. Open it with /post %d.", post.ID))
}

func (b *Bot) handleComment(ctx context.Context, chatID int64, userID string, postID int64, text string) error {
	_, err := b.svc.Forum.AddComment(ctx, userID, postID, text)
	if errors.Is(err, database.ErrNotFound) {
		return b.sendText(chatID, "Post not found.")
	}
	if err != nil {
		return err
	}
	return b.handleThread(ctx, chatID, postID)
}

func (b *Bot) handleAddDomain(ctx context.Context, chatID int64, arguments string) error {
	name, description, _ := strings.Cut(arguments, "|")
	domain, err := b.svc.Catalog.AddDomain(ctx, strings.TrimSpace(name), strings.TrimSpace(description))
	if errors.Is(err, catalog.ErrInvalidInput) {
		return b.sendText(chatID, "Usage: /adddomain <name> | <description>")
	}
	if err != nil {
		return err
	}
	return b.sendText(chatID, fmt.Sprintf("Domain \"%s\" added with id %d.", domain.Name, domain.ID))
}

func (b *Bot) handleReport(ctx context.Context, chatID int64, user models.User) error {
	content, name, err := b.svc.Reporter.Generate(ctx, user)
	if err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: content})
	doc.Caption = "Your progress report"
	return b.sendMessage(doc)
}

func (b *Bot) handleChat(ctx context.Context, chatID int64, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.log.Warn("Failed to send typing action", "chat_id", chatID, "error", err)
	}
	delay := b.svc.Responder.TypingDelay(b.config.ChatMinDelay, b.config.ChatMaxDelay)
	if err := b.pause(ctx, delay); err != nil {
		return err
	}

	reply, err := b.conversation(chatID).Send(text)
	if errors.Is(err, chatbot.ErrEmptyMessage) {
		return nil
	}
	if err != nil {
		return err
	}
	return b.sendText(chatID, reply.Content)
}

func (b *Bot) handleUnknownCommand(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Unknown command. Use /menu to show the main menu.")
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	return b.sendMessage(msg)
}

// HandleCallback handles presses on inline keyboard buttons
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback == nil || callback.Message == nil || callback.Message.Chat == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}

	// Always send an answer to the callback query to remove the loading state
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.log.Warn("Failed to answer callback", "error", err)
	}

	chatID := callback.Message.Chat.ID
	switch callback.Data {
	case "main_menu":
		return b.showMainMenu(chatID)
	case "chat":
		return b.sendText(chatID, chatbot.WelcomeMessage)
	}

	user, ok, err := b.currentUser(chatID)
	if !ok {
		return err
	}

	switch {
	case callback.Data == "skills":
		return b.handleSkills(ctx, chatID)
	case callback.Data == "progress":
		return b.handleProgress(ctx, chatID, user.ID)
	case callback.Data == "forum":
		return b.handleForum(ctx, chatID, nil)
	case callback.Data == "report":
		return b.handleReport(ctx, chatID, *user)
	case strings.HasPrefix(callback.Data, "domain_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(callback.Data, "domain_"), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid domain ID in callback data: %w", err)
		}
		return b.handleDomain(ctx, chatID, id)
	case strings.HasPrefix(callback.Data, "modules_"):
		var domainID, levelID int64
		if _, err := fmt.Sscanf(callback.Data, "modules_%d_%d", &domainID, &levelID); err != nil {
			return fmt.Errorf("invalid modules callback data: %w", err)
		}
		return b.handleModules(ctx, chatID, user.ID, domainID, levelID)
	case strings.HasPrefix(callback.Data, "complete_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(callback.Data, "complete_"), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid module ID in callback data: %w", err)
		}
		return b.handleUpdateProgress(ctx, chatID, user.ID, id, true)
	case strings.HasPrefix(callback.Data, "answer_"):
		choice, err := strconv.Atoi(strings.TrimPrefix(callback.Data, "answer_"))
		if err != nil {
			return fmt.Errorf("invalid answer in callback data: %w", err)
		}
		return b.handleAnswer(ctx, chatID, user.ID, choice)
	case strings.HasPrefix(callback.Data, "post_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(callback.Data, "post_"), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid post ID in callback data: %w", err)
		}
		return b.handleThread(ctx, chatID, id)
	default:
		return b.sendText(chatID, "⚠️ Unknown action")
	}
}

// advanceNewPost applies one step of the /newpost flow to the chat state.
// The title step keeps the state, the content step removes it and returns
// the collected data with finished set. ok is false when no post is pending.
func (b *Bot) advanceNewPost(chatID int64, text string) (map[string]string, bool, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, ok := b.userStates[chatID]
	if !ok || state.Action != actionNewPost {
		return nil, false, false
	}
	if state.Step == stepPostTitle {
		state.Data["title"] = text
		state.Step = stepPostContent
		return nil, false, true
	}
	delete(b.userStates, chatID)
	return state.Data, true, true
}

// resetChat drops the per-chat state kept for a signed-out user
func (b *Bot) resetChat(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.userStates, chatID)
	delete(b.attempts, chatID)
	delete(b.conversations, chatID)
}

func intArg(args []string, i int) (int64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing argument %d", i+1)
	}
	return strconv.ParseInt(args[i], 10, 64)
}
