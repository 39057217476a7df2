package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/xela07ax/guia-juridico-web/internal/domain"
	"github.com/xela07ax/guia-juridico-web/internal/profile"
)

const profileUpdatedMessage = "Perfil atualizado com sucesso!"

type profileData struct {
	User       *domain.User
	Form       profile.EditForm
	Errors     domain.FieldErrors
	Error      string
	SavedLabel string
	Saved      []domain.Listing
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	client := h.client(r)
	user, err := h.profile.Load(r.Context(), client.Session)
	if err != nil {
		if h.failAction(w, r, err) {
			return
		}
		h.logger.Error("failed to load profile", zap.Error(err))
		h.render(w, r, http.StatusBadGateway, "error", "Perfil", domain.UserMessage(err, profile.UpdateFailedMessage))
		return
	}
	h.renderProfile(w, r, http.StatusOK, user, profile.EditFormFromUser(user), nil, "")
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	client := h.client(r)
	ctx := r.Context()

	current, err := h.profile.Load(ctx, client.Session)
	if err != nil && h.failAction(w, r, err) {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderProfile(w, r, http.StatusBadRequest, current, profile.EditFormFromUser(current), nil, profile.UpdateFailedMessage)
		return
	}
	form := profile.EditFormFromValues(r.PostForm)

	if _, err := h.profile.Update(ctx, client.Session, current, form); err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			h.renderProfile(w, r, http.StatusUnprocessableEntity, current, form, vErr.Fields, "")
			return
		}
		if h.failAction(w, r, err) {
			return
		}
		h.renderProfile(w, r, http.StatusBadGateway, current, form, nil, domain.UserMessage(err, profile.UpdateFailedMessage))
		return
	}

	h.notify(r, profileUpdatedMessage)
	redirect(w, r, "/perfil")
}

func (h *Handler) renderProfile(w http.ResponseWriter, r *http.Request, status int, user *domain.User,
	form profile.EditForm, errs domain.FieldErrors, msg string) {
	if user == nil {
		user = &domain.User{}
	}
	saved := h.client(r).Favorites.Items()
	// пароли обратно в форму не отдаем
	form.SenhaAtual, form.SenhaNova, form.ConfirmarSenha = "", "", ""

	h.render(w, r, status, "profile", "Meu Perfil", profileData{
		User:       user,
		Form:       form,
		Errors:     errs,
		Error:      msg,
		SavedLabel: profile.SavedCountLabel(len(saved)),
		Saved:      saved,
	})
}
