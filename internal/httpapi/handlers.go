package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/skillbuilder/internal/catalog"
	"github.com/example/skillbuilder/internal/chatbot"
	"github.com/example/skillbuilder/pkg/models"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type signUpRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	user, err := s.svc.Auth.SignIn(req.Email, req.Password)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	s.respondWithToken(c, http.StatusOK, user)
}

func (s *Server) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	user, err := s.svc.Auth.SignUp(req.Username, req.Email, req.Password)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	s.respondWithToken(c, http.StatusCreated, user)
}

func (s *Server) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := s.svc.Tokens.Issue(user)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(status, authResponse{Token: token, User: user})
}

func (s *Server) me(c *gin.Context) {
	user, ok := s.svc.Auth.User(c.GetString(ctxUserID))
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", errors.New("account no longer exists"))
		return
	}
	respondOK(c, user)
}

func (s *Server) listDomains(c *gin.Context) {
	domains, err := s.svc.Catalog.Domains(c.Request.Context())
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondOK(c, domains)
}

func (s *Server) getDomain(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	domain, err := s.svc.Catalog.Domain(c.Request.Context(), id)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondOK(c, domain)
}

func (s *Server) listLevels(c *gin.Context) {
	levels, err := s.svc.Catalog.MasteryLevels(c.Request.Context())
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondOK(c, levels)
}

type moduleResponse struct {
	models.Module
	Status   string               `json:"status"`
	Progress *models.UserProgress `json:"progress"`
}

func (s *Server) listModules(c *gin.Context) {
	domainID, ok := idParam(c, "id")
	if !ok {
		return
	}
	levelID, ok := idParam(c, "level")
	if !ok {
		return
	}
	modules, err := s.svc.Catalog.Modules(c.Request.Context(), c.GetString(ctxUserID), domainID, levelID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	out := make([]moduleResponse, 0, len(modules))
	for _, m := range modules {
		out = append(out, toModuleResponse(m))
	}
	respondOK(c, out)
}

func toModuleResponse(m catalog.ModuleStatus) moduleResponse {
	return moduleResponse{Module: m.Module, Status: m.Status(), Progress: m.Progress}
}

type progressResponse struct {
	Stats   models.ProgressStats    `json:"stats"`
	Domains []models.DomainProgress `json:"domains"`
}

func (s *Server) getProgress(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(ctxUserID)
	stats, err := s.svc.Progress.Stats(ctx, userID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	domains, err := s.svc.Progress.Breakdown(ctx, userID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondOK(c, progressResponse{Stats: stats, Domains: domains})
}

type updateProgressRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

func (s *Server) updateProgress(c *gin.Context) {
	moduleID, ok := idParam(c, "moduleId")
	if !ok {
		return
	}
	var req updateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	record, err := s.svc.Progress.Update(c.Request.Context(), c.GetString(ctxUserID), moduleID, *req.Completed)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondOK(c, record)
}

func (s *Server) downloadReport(c *gin.Context) {
	user := models.User{ID: c.GetString(ctxUserID), Username: c.GetString(ctxUsername)}
	if profile, ok := s.svc.Auth.User(user.ID); ok {
		user = *profile
	}
	content, name, err := s.svc.Reporter.Generate(c.Request.Context(), user)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxContentType, content)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Category chatbot.Category `json:"category"`
	Reply    chatbot.Message  `json:"reply"`
}

func (s *Server) chatHistory(c *gin.Context) {
	respondOK(c, s.conversation(c.GetString(ctxUserID)).Messages())
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.respondServiceError(c, chatbot.ErrEmptyMessage)
		return
	}
	conv := s.conversation(c.GetString(ctxUserID))
	if err := s.pause(c.Request.Context(), s.svc.Responder.TypingDelay(s.config.ChatMinDelay, s.config.ChatMaxDelay)); err != nil {
		return
	}
	reply, err := conv.Send(req.Message)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondOK(c, chatResponse{Category: chatbot.Categorize(req.Message), Reply: reply})
}

func (s *Server) listPosts(c *gin.Context) {
	var domainID *int64
	if raw := c.Query("domain_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid_input", errors.New("invalid domain_id"))
			return
		}
		domainID = &id
	}
	posts, err := s.svc.Forum.Posts(c.Request.Context(), domainID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondOK(c, posts)
}

type createPostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	DomainID *int64 `json:"domain_id"`
}

func (s *Server) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	post, err := s.svc.Forum.CreatePost(c.Request.Context(), c.GetString(ctxUserID), req.Title, req.Content, req.DomainID)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (s *Server) getThread(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	thread, err := s.svc.Forum.Thread(c.Request.Context(), id)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	if thread.Comments == nil {
		thread.Comments = []models.ForumComment{}
	}
	respondOK(c, thread)
}

type commentRequest struct {
	Content string `json:"content"`
}

func (s *Server) addComment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	comment, err := s.svc.Forum.AddComment(c.Request.Context(), c.GetString(ctxUserID), id, req.Content)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Quiz views leave out which answer is correct
type quizView struct {
	ID        int64          `json:"id"`
	ModuleID  int64          `json:"module_id"`
	Title     string         `json:"title"`
	Questions []questionView `json:"questions"`
}

type questionView struct {
	ID       int64        `json:"id"`
	Question string       `json:"question"`
	Answers  []answerView `json:"answers"`
}

type answerView struct {
	ID     int64  `json:"id"`
	Answer string `json:"answer"`
}

func toQuizView(q models.Quiz) quizView {
	view := quizView{ID: q.ID, ModuleID: q.ModuleID, Title: q.Title, Questions: []questionView{}}
	for _, question := range q.Questions {
		qv := questionView{ID: question.ID, Question: question.Question, Answers: []answerView{}}
		for _, a := range question.Answers {
			qv.Answers = append(qv.Answers, answerView{ID: a.ID, Answer: a.Answer})
		}
		view.Questions = append(view.Questions, qv)
	}
	return view
}

func (s *Server) moduleQuizzes(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	quizzes, err := s.svc.Quiz.ForModule(c.Request.Context(), id)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	out := make([]quizView, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, toQuizView(q))
	}
	respondOK(c, out)
}

type submitQuizRequest struct {
	Answers []int64 `json:"answers" binding:"required"`
}

func (s *Server) submitQuiz(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req submitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	result, err := s.svc.Quiz.Submit(c.Request.Context(), c.GetString(ctxUserID), id, req.Answers)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) quizResults(c *gin.Context) {
	results, err := s.svc.Quiz.Results(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	if results == nil {
		results = []models.UserQuizResult{}
	}
	respondOK(c, results)
}
