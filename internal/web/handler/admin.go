package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/lo"

	"github.com/xela07ax/guia-juridico-web/internal/admin"
	"github.com/xela07ax/guia-juridico-web/internal/domain"
)

const (
	rolesUpdatedMessage = "Roles atualizadas com sucesso!"
	userDeletedMessage  = "Usuário deletado com sucesso!"
	rolesEmptyMessage   = "Selecione pelo menos uma role."
)

type userRow struct {
	User       domain.User
	RolesLabel string
	Selected   []string
}

type adminData struct {
	Error      string
	Query      string
	CountLabel string
	Rows       []userRow
	AllRoles   []domain.Role
}

func (h *Handler) manager(r *http.Request) *admin.Manager {
	return admin.NewManager(h.adminAPI, h.client(r).Session, h.logger)
}

// Admin — список пользователей с поиском по имени и email
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	m := h.manager(r)
	data := adminData{Query: r.URL.Query().Get("q"), AllRoles: domain.AllRoles}

	if err := m.Load(r.Context()); err != nil {
		if h.failAction(w, r, err) {
			return
		}
		data.Error = "Erro ao carregar usuários: " + domain.UserMessage(err, "tente novamente.")
	}

	users := admin.Filter(m.Users(), data.Query)
	data.CountLabel = admin.CountLabel(len(users))
	data.Rows = lo.Map(users, func(u domain.User, _ int) userRow {
		return userRow{User: u, RolesLabel: admin.FormatRoles(u.Roles), Selected: admin.SelectedRoles(u)}
	})
	h.render(w, r, http.StatusOK, "admin", "Administração", data)
}

func (h *Handler) UpdateRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.notify(r, rolesEmptyMessage)
		redirect(w, r, "/admin")
		return
	}

	err := h.manager(r).UpdateRoles(r.Context(), id, r.PostForm["roles"])
	var vErr *domain.ValidationError
	switch {
	case err == nil:
		h.notify(r, rolesUpdatedMessage)
	case errors.As(err, &vErr):
		h.notify(r, vErr.Fields["roles"])
	case h.failAction(w, r, err):
		return
	default:
		h.notify(r, "Erro ao atualizar roles: "+domain.UserMessage(err, "tente novamente."))
	}
	redirect(w, r, "/admin")
}

func (h *Handler) ConfirmDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	m := h.manager(r)
	if err := m.Load(r.Context()); err != nil && h.failAction(w, r, err) {
		return
	}
	question := "Tem certeza que deseja deletar este usuário?"
	if u, found := m.Find(id); found {
		question = fmt.Sprintf("Tem certeza que deseja deletar o usuário %s?", u.Nome)
	}
	h.render(w, r, http.StatusOK, "confirm", "Excluir usuário", confirmData{
		Question: question,
		Action:   fmt.Sprintf("/admin/usuarios/%d/excluir", id),
		Cancel:   "/admin",
	})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	if err := h.manager(r).Delete(r.Context(), id); err != nil {
		if h.failAction(w, r, err) {
			return
		}
		h.notify(r, "Erro ao deletar usuário: "+domain.UserMessage(err, "tente novamente."))
	} else {
		h.notify(r, userDeletedMessage)
	}
	redirect(w, r, "/admin")
}
