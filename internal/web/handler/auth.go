package handler

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/xela07ax/guia-juridico-web/internal/domain"
	"github.com/xela07ax/guia-juridico-web/internal/session"
)

const (
	registerSuccessMessage = "Cadastro realizado com sucesso! Faça login para continuar."
	registerFailedMessage  = "Falha no cadastro. Verifique os dados e tente novamente."
)

type loginData struct {
	Error string
	Email string
}

type registerData struct {
	Error string
	Form  domain.RegisterRequest
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.client(r).Session.CurrentToken(r.Context()); ok {
		redirect(w, r, "/")
		return
	}
	h.render(w, r, http.StatusOK, "login", "Entrar", loginData{})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	client := h.client(r)
	creds := domain.Credentials{
		Email: strings.TrimSpace(r.FormValue("email")),
		Senha: r.FormValue("senha"),
	}

	if _, err := client.Session.Login(r.Context(), creds); err != nil {
		h.logger.Info("login rejected", zap.String("client_id", client.ID), zap.Error(err))
		data := loginData{Email: creds.Email, Error: domain.UserMessage(err, session.LoginFailedMessage)}
		h.render(w, r, http.StatusUnauthorized, "login", "Entrar", data)
		return
	}

	// избранное нового пользователя нужно уже на следующей странице
	if err := client.Favorites.Sync(r.Context()); err != nil {
		h.logger.Warn("favorites sync after login failed", zap.Error(err))
	}
	redirect(w, r, "/")
}

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", "Cadastro", registerData{})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req := domain.RegisterRequest{
		Nome:    strings.TrimSpace(r.FormValue("nome")),
		Email:   strings.TrimSpace(r.FormValue("email")),
		Senha:   r.FormValue("senha"),
		Celular: strings.TrimSpace(r.FormValue("celular")),
	}
	// пароль в форму не возвращаем
	echo := req
	echo.Senha = ""

	if req.Nome == "" || req.Email == "" || req.Senha == "" {
		h.render(w, r, http.StatusUnprocessableEntity, "register", "Cadastro",
			registerData{Error: registerFailedMessage, Form: echo})
		return
	}

	if err := h.registrar.Register(r.Context(), req); err != nil {
		h.logger.Warn("registration failed", zap.Error(err))
		h.render(w, r, http.StatusOK, "register", "Cadastro",
			registerData{Error: domain.UserMessage(err, registerFailedMessage), Form: echo})
		return
	}

	h.notify(r, registerSuccessMessage)
	redirect(w, r, "/login")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	client := h.client(r)
	if err := client.Session.Logout(r.Context()); err != nil {
		h.logger.Error("logout failed", zap.String("client_id", client.ID), zap.Error(err))
	}
	if err := client.Favorites.Sync(r.Context()); err != nil {
		h.logger.Warn("favorites sync after logout failed", zap.Error(err))
	}
	redirect(w, r, "/")
}
