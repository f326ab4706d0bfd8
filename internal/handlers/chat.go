package handlers

import (
	"errors"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"aliados/internal/auth"
	"aliados/internal/config"
	"aliados/internal/engine"
	"aliados/internal/logger"
	"aliados/internal/middleware"
	"aliados/internal/render"
	"aliados/internal/validation"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message" form:"message"`
}

// ChatResponse is one assistant reply.
type ChatResponse struct {
	Content string        `json:"content"`
	HTML    template.HTML `json:"html"`
	Intent  string        `json:"intent,omitempty"`
	Outcome string        `json:"outcome,omitempty"`
}

// ChatHandler serves the chat page and its message endpoint.
type ChatHandler struct {
	engine *engine.Engine
	auth   Authenticator
	ids    middleware.IdentityStore
	logins LoginRecorder
	cfg    *config.Config
	log    logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(e *engine.Engine, authn Authenticator, ids middleware.IdentityStore, logins LoginRecorder, cfg *config.Config, log logger.Logger) *ChatHandler {
	if logins == nil {
		logins = nopLoginRecorder{}
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &ChatHandler{
		engine: e,
		auth:   authn,
		ids:    ids,
		logins: logins,
		cfg:    cfg,
		log:    log.With(map[string]interface{}{"component": "chat"}),
	}
}

// Index renders the chat page.
func (h *ChatHandler) Index(c fiber.Ctx) error {
	id := middleware.IdentityFrom(c)
	welcome := engine.AuthPrompt()
	if id != nil {
		welcome = engine.Greeting(id.Username)
	}
	return c.Render("index", fiber.Map{
		"Title":       "Partner assistant",
		"Identity":    id,
		"Welcome":     render.Markdown(welcome),
		"OIDCEnabled": h.cfg != nil && h.cfg.OIDCEnabled(),
	})
}

// Chat answers one message. Without a logged in caller the message is
// treated as a "username password" login attempt.
func (h *ChatHandler) Chat(c fiber.Ctx) error {
	var req ChatRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	message, ok, msg := validation.ValidateMessage(req.Message)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	id := middleware.IdentityFrom(c)
	if id == nil {
		return reply(c, h.login(c, message), "", "")
	}

	ans := h.engine.Answer(c.Context(), message, id)
	return reply(c, ans.Text, ans.Intent, ans.Outcome)
}

// login never tells the caller which credential was wrong.
func (h *ChatHandler) login(c fiber.Ctx, message string) string {
	username, password, ok := validation.SplitCredentials(message)
	if !ok {
		return engine.AuthPrompt()
	}

	id, err := h.auth.Login(c.Context(), username, password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.logins.ObserveLogin(LoginRejected)
		return engine.AuthPrompt()
	case err != nil:
		h.logins.ObserveLogin(LoginFailed)
		incident := uuid.NewString()
		h.log.Error("login failed", map[string]interface{}{
			"incident_id": incident,
			"username":    username,
			"error":       err.Error(),
		})
		return engine.Apology(incident)
	}

	if err := h.ids.Put(c, id); err != nil {
		h.logins.ObserveLogin(LoginFailed)
		incident := uuid.NewString()
		h.log.Error("failed to store session identity", map[string]interface{}{
			"incident_id": incident,
			"username":    id.Username,
			"error":       err.Error(),
		})
		return engine.Apology(incident)
	}
	h.logins.ObserveLogin(LoginSucceeded)
	return engine.Greeting(id.Username)
}

// Logout ends the caller's session.
func (h *ChatHandler) Logout(c fiber.Ctx) error {
	if err := h.ids.Clear(c); err != nil {
		return err
	}
	if strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON) {
		return c.JSON(fiber.Map{"content": engine.AuthPrompt()})
	}
	return c.Redirect().To("/")
}

func reply(c fiber.Ctx, text, intentName, outcome string) error {
	return c.JSON(ChatResponse{
		Content: text,
		HTML:    render.Markdown(text),
		Intent:  intentName,
		Outcome: outcome,
	})
}
