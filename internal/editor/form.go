package editor

import (
	"net/url"
	"strings"
	"time"

	"github.com/xela07ax/guia-juridico-web/internal/catalog"
	"github.com/xela07ax/guia-juridico-web/internal/domain"
)

// ImageOption — пункт выбора картинки в редакторе
type ImageOption struct {
	Value string
	Label string
}

var ImageOptions = []ImageOption{
	{Value: "estagio.jpg", Label: "Estágio"},
	{Value: "advogado.jpg", Label: "Advogado"},
	{Value: "competicao.jpg", Label: "Competição"},
	{Value: "publicacao.jpg", Label: "Publicação"},
	{Value: "congresso.jpg", Label: "Congresso"},
	{Value: "eventos.jpg", Label: "Eventos"},
}

// Form — состояние формы редактора. Requirements хранится текстом,
// по одному требованию на строку.
type Form struct {
	ID              int64
	Title           string
	Company         string
	Location        string
	Description     string
	Requirements    string
	Salary          string
	ApplicationLink string
	Type            string
	Image           string
	OpeningDate     string
	ClosingDate     string
}

// NewForm — пустая форма создания
func NewForm() Form {
	return Form{Type: string(domain.TypeEstagio), Image: catalog.FallbackImage}
}

// FormFromRecord предзаполняет форму существующей публикацией
func FormFromRecord(r domain.ListingRecord) Form {
	f := Form{
		ID:              r.ID,
		Title:           r.Title,
		Company:         r.Company,
		Location:        r.Location,
		Description:     r.Description,
		Requirements:    strings.Join(domain.ParseRequirements(r.Requirements), "\n"),
		Salary:          r.Salary,
		ApplicationLink: r.ApplicationLink,
		Type:            r.Type,
		Image:           r.Image,
		OpeningDate:     inputDate(r.OpeningDate),
		ClosingDate:     inputDate(r.ClosingDate),
	}
	if f.Type == "" {
		f.Type = string(domain.TypeEstagio)
	}
	if f.Image == "" {
		f.Image = catalog.FallbackImage
	}
	return f
}

// FormFromValues читает отправленную HTML-форму
func FormFromValues(id int64, v url.Values) Form {
	return Form{
		ID:              id,
		Title:           v.Get("title"),
		Company:         v.Get("company"),
		Location:        v.Get("location"),
		Description:     v.Get("description"),
		Requirements:    v.Get("requirements"),
		Salary:          v.Get("salary"),
		ApplicationLink: v.Get("applicationLink"),
		Type:            v.Get("type"),
		Image:           v.Get("image"),
		OpeningDate:     strings.TrimSpace(v.Get("openingDate")),
		ClosingDate:     strings.TrimSpace(v.Get("closingDate")),
	}
}

// Editing — true, если форма меняет существующую публикацию
func (f Form) Editing() bool { return f.ID != 0 }

// Validate возвращает ошибки по полям; пустая карта — форма валидна.
func (f Form) Validate() domain.FieldErrors {
	errs := domain.FieldErrors{}

	if blank(f.Title) {
		errs["title"] = "Título é obrigatório"
	}
	if blank(f.Company) {
		errs["company"] = "Empresa é obrigatória"
	}
	if blank(f.Location) {
		errs["location"] = "Localização é obrigatória"
	}
	if blank(f.Description) {
		errs["description"] = "Descrição é obrigatória"
	}
	switch {
	case blank(f.Type):
		errs["type"] = "Tipo é obrigatório"
	case !domain.IsKnownListingType(f.Type):
		errs["type"] = "Tipo inválido"
	}

	opening, openErr := domain.ParseDate(f.OpeningDate, time.UTC)
	if openErr != nil {
		errs["openingDate"] = "Data inválida"
	}
	closing, closeErr := domain.ParseDate(f.ClosingDate, time.UTC)
	if closeErr != nil {
		errs["closingDate"] = "Data inválida"
	}
	if openErr == nil && closeErr == nil && !opening.IsZero() && !closing.IsZero() && !closing.After(opening) {
		errs["closingDate"] = "Data de encerramento deve ser posterior à data de abertura"
	}
	return errs
}

// Payload собирает тело запроса; требования уходят JSON-строкой.
func (f Form) Payload() domain.ListingPayload {
	return domain.ListingPayload{
		Title:           strings.TrimSpace(f.Title),
		Company:         strings.TrimSpace(f.Company),
		Location:        strings.TrimSpace(f.Location),
		Description:     strings.TrimSpace(f.Description),
		Requirements:    domain.EncodeRequirements(domain.RequirementsFromText(f.Requirements)),
		Salary:          strings.TrimSpace(f.Salary),
		ApplicationLink: strings.TrimSpace(f.ApplicationLink),
		Type:            f.Type,
		Image:           f.Image,
		OpeningDate:     f.OpeningDate,
		ClosingDate:     f.ClosingDate,
	}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// inputDate приводит дату бэкенда к формату <input type="date">
func inputDate(s string) string {
	t, err := domain.ParseDate(s, time.UTC)
	if err != nil || t.IsZero() {
		return s
	}
	return t.Format(domain.DateLayout)
}
