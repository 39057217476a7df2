package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// ListingType — категория возможности (значения совпадают с бэкендом)
type ListingType string

const (
	TypeEstagio    ListingType = "Estágio"
	TypeAdvogados  ListingType = "Vagas para Advogados"
	TypeCongresso  ListingType = "Congresso"
	TypeCompeticao ListingType = "Competição"
	TypePublicacao ListingType = "Publicação Acadêmica"
	TypeEventos    ListingType = "Eventos"
)

// ListingTypes в порядке отображения в фильтрах и редакторе.
var ListingTypes = []ListingType{TypeEstagio, TypeAdvogados, TypeCongresso, TypeCompeticao, TypePublicacao, TypeEventos}

// IsKnownListingType проверяет значение из формы
func IsKnownListingType(t string) bool {
	for _, lt := range ListingTypes {
		if string(lt) == t {
			return true
		}
	}
	return false
}

// ListingRecord — публикация в том виде, в каком ее отдает бэкенд.
// Requirements приходит JSON-строкой, массивом или обычным текстом.
type ListingRecord struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Company         string          `json:"company"`
	Location        string          `json:"location"`
	Description     string          `json:"description"`
	Requirements    json.RawMessage `json:"requirements,omitempty"`
	Salary          string          `json:"salary,omitempty"`
	ApplicationLink string          `json:"applicationLink,omitempty"`
	Type            string          `json:"type"`
	Image           string          `json:"image,omitempty"`
	OpeningDate     string          `json:"openingDate,omitempty"`
	ClosingDate     string          `json:"closingDate,omitempty"`
	Status          string          `json:"status,omitempty"` // бэкенду не доверяем, см. DeriveStatus
}

// Listing — нормализованная публикация, с которой работают представления.
type Listing struct {
	ID              int64
	Title           string
	Company         string
	Location        string
	Description     string
	Requirements    []string
	Salary          string
	ApplicationLink string
	Type            ListingType
	Image           string // уже разрешенный URL ассета
	OpeningDate     time.Time
	ClosingDate     time.Time
	Status          Status
}

// ListingPayload — тело POST/PUT /oportunidades.
// Requirements передается JSON-строкой массива.
type ListingPayload struct {
	Title           string `json:"title"`
	Company         string `json:"company"`
	Location        string `json:"location"`
	Description     string `json:"description"`
	Requirements    string `json:"requirements"`
	Salary          string `json:"salary,omitempty"`
	ApplicationLink string `json:"applicationLink,omitempty"`
	Type            string `json:"type"`
	Image           string `json:"image,omitempty"`
	OpeningDate     string `json:"openingDate,omitempty"`
	ClosingDate     string `json:"closingDate,omitempty"`
}

// DateLayout — формат дат бэкенда (LocalDate)
const DateLayout = "2006-01-02"

var dateLayouts = []string{DateLayout, "2006-01-02T15:04:05", time.RFC3339, "2006-01-02T15:04"}

// ParseDate разбирает дату бэкенда в заданной зоне. Пустая строка — нулевое время.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.Local
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// ParseRequirements приводит поле requirements к упорядоченному списку.
// Поддерживает массив, JSON-строку с массивом внутри и обычный текст.
func ParseRequirements(raw json.RawMessage) []string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []string{}
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return nonBlank(list)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return []string{}
	}
	if err := json.Unmarshal([]byte(s), &list); err == nil {
		return nonBlank(list)
	}
	// Обычный текст: одна строка — одно требование
	return nonBlank(strings.Split(s, "\n"))
}

// EncodeRequirements сериализует список в JSON-строку для бэкенда.
func EncodeRequirements(items []string) string {
	b, _ := json.Marshal(nonBlank(items))
	return string(b)
}

// RequirementsFromText — строки текста без пустых
func RequirementsFromText(text string) []string {
	return nonBlank(strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"))
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if t := strings.TrimSpace(it); t != "" {
			out = append(out, t)
		}
	}
	return out
}
