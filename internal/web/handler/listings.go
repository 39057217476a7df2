package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/xela07ax/guia-juridico-web/internal/catalog"
	"github.com/xela07ax/guia-juridico-web/internal/domain"
	"github.com/xela07ax/guia-juridico-web/internal/editor"
)

const (
	listingsLoadFailedMessage  = "Erro ao carregar oportunidades. Tente novamente mais tarde."
	listingSaveFailedMessage   = "Erro ao salvar oportunidade. Tente novamente."
	listingDeleteFailedMessage = "Erro ao deletar oportunidade. Tente novamente."
	listingLoadFailedMessage   = "Erro ao carregar oportunidade."
)

// card — публикация с отметкой избранного для текущего клиента
type card struct {
	domain.Listing
	Favorite bool
}

type listingsData struct {
	Filter     catalog.Filter
	Categories []string
	Statuses   []string
	Error      string
	Cards      []card
	CanManage  bool
	ReturnTo   string
}

type editorData struct {
	Form   editor.Form
	Errors domain.FieldErrors
	Error  string
	Action string
	Types  []domain.ListingType
	Images []editor.ImageOption
}

type confirmData struct {
	Question string
	Action   string
	Cancel   string
}

func filterFromQuery(r *http.Request) catalog.Filter {
	q := r.URL.Query()
	f := catalog.Filter{
		Text:     strings.TrimSpace(q.Get("q")),
		Category: q.Get("categoria"),
		Status:   q.Get("status"),
	}
	if f.Category == "" {
		f.Category = catalog.AllCategories
	}
	if f.Status == "" {
		f.Status = catalog.AllStatuses
	}
	return f
}

// Listings — каталог с фильтрами текста, категории и статуса
func (h *Handler) Listings(w http.ResponseWriter, r *http.Request) {
	client := h.client(r)
	ctx := r.Context()

	data := listingsData{
		Filter:     filterFromQuery(r),
		Categories: catalog.Categories,
		Statuses:   catalog.StatusFilters,
		CanManage:  h.catalog.CanManage(ctx, client.Session),
		ReturnTo:   r.URL.RequestURI(),
	}

	listings, err := h.catalog.Fetch(ctx)
	if err != nil {
		data.Error = domain.UserMessage(err, listingsLoadFailedMessage)
	}
	data.Cards = lo.Map(catalog.Apply(listings, data.Filter), func(l domain.Listing, _ int) card {
		return card{Listing: l, Favorite: client.Favorites.IsFavorite(l.ID)}
	})

	h.render(w, r, http.StatusOK, "listings", "Oportunidades", data)
}

// ToggleFavorite сохраняет или убирает публикацию и возвращает туда, откуда пришли
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	h.client(r).Favorites.Toggle(r.Context(), id)
	redirect(w, r, safeReturn(r.FormValue("voltar"), "/oportunidades"))
}

func (h *Handler) NewListing(w http.ResponseWriter, r *http.Request) {
	h.renderEditor(w, r, http.StatusOK, editor.NewForm(), nil, "")
}

func (h *Handler) EditListing(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	record, err := h.catalog.Get(r.Context(), h.client(r).Session, id)
	if err != nil {
		h.logger.Error("failed to load listing for edit", zap.Int64("listing_id", id), zap.Error(err))
		h.notify(r, domain.UserMessage(err, listingLoadFailedMessage))
		redirect(w, r, "/oportunidades")
		return
	}
	h.renderEditor(w, r, http.StatusOK, editor.FormFromRecord(*record), nil, "")
}

func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	h.saveListing(w, r, 0)
}

func (h *Handler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	h.saveListing(w, r, id)
}

func (h *Handler) saveListing(w http.ResponseWriter, r *http.Request, id int64) {
	if err := r.ParseForm(); err != nil {
		h.renderEditor(w, r, http.StatusBadRequest, editor.NewForm(), nil, listingSaveFailedMessage)
		return
	}
	form := editor.FormFromValues(id, r.PostForm)
	if errs := form.Validate(); len(errs) > 0 {
		h.renderEditor(w, r, http.StatusUnprocessableEntity, form, errs, "")
		return
	}

	if err := h.catalog.Save(r.Context(), h.client(r).Session, id, form.Payload()); err != nil {
		if h.failAction(w, r, err) {
			return
		}
		h.renderEditor(w, r, http.StatusBadGateway, form, nil, domain.UserMessage(err, listingSaveFailedMessage))
		return
	}
	redirect(w, r, "/oportunidades")
}

func (h *Handler) renderEditor(w http.ResponseWriter, r *http.Request, status int, form editor.Form, errs domain.FieldErrors, msg string) {
	action := "/oportunidades/nova"
	title := "Nova Oportunidade"
	if form.Editing() {
		action = fmt.Sprintf("/oportunidades/%d/editar", form.ID)
		title = "Editar Oportunidade"
	}
	h.render(w, r, status, "editor", title, editorData{
		Form:   form,
		Errors: errs,
		Error:  msg,
		Action: action,
		Types:  domain.ListingTypes,
		Images: editor.ImageOptions,
	})
}

// ConfirmDeleteListing — вопрос перед удалением
func (h *Handler) ConfirmDeleteListing(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	question := "Tem certeza que deseja excluir esta oportunidade?"
	if record, err := h.catalog.Get(r.Context(), h.client(r).Session, id); err == nil && record.Title != "" {
		question = fmt.Sprintf("Tem certeza que deseja excluir a oportunidade %q?", record.Title)
	}
	h.render(w, r, http.StatusOK, "confirm", "Excluir oportunidade", confirmData{
		Question: question,
		Action:   fmt.Sprintf("/oportunidades/%d/excluir", id),
		Cancel:   "/oportunidades",
	})
}

func (h *Handler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.NotFound(w, r)
		return
	}
	if err := h.catalog.Delete(r.Context(), h.client(r).Session, id); err != nil {
		if h.failAction(w, r, err) {
			return
		}
		h.notify(r, domain.UserMessage(err, listingDeleteFailedMessage))
	}
	redirect(w, r, "/oportunidades")
}
