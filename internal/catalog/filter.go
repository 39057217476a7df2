package catalog

import (
	"strings"

	"github.com/samber/lo"

	"github.com/xela07ax/guia-juridico-web/internal/domain"
)

const (
	AllCategories = "Todos"
	AllStatuses   = "Todas"
)

// Categories — кнопки фильтра категорий
var Categories = append([]string{AllCategories}, lo.Map(domain.ListingTypes, func(t domain.ListingType, _ int) string {
	return string(t)
})...)

// StatusFilters — кнопки фильтра статуса
var StatusFilters = []string{AllStatuses, string(domain.StatusAbertas), string(domain.StatusEmBreve), string(domain.StatusEncerradas)}

// Filter — три независимых фильтра, применяются вместе
type Filter struct {
	Text     string
	Category string
	Status   string
}

// Apply — текст ищется без учета регистра в title, company, location;
// категория и статус сравниваются целиком.
func Apply(listings []domain.Listing, f Filter) []domain.Listing {
	text := strings.ToLower(strings.TrimSpace(f.Text))
	category := strings.ToLower(strings.TrimSpace(f.Category))
	status := strings.ToLower(strings.TrimSpace(f.Status))

	return lo.Filter(listings, func(l domain.Listing, _ int) bool {
		return matchesText(l, text) &&
			(isAll(category, AllCategories) || strings.ToLower(string(l.Type)) == category) &&
			(isAll(status, AllStatuses) || strings.ToLower(string(l.Status)) == status)
	})
}

func matchesText(l domain.Listing, text string) bool {
	if text == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.Title), text) ||
		strings.Contains(strings.ToLower(l.Company), text) ||
		strings.Contains(strings.ToLower(l.Location), text)
}

func isAll(value, all string) bool {
	return value == "" || value == strings.ToLower(all)
}
