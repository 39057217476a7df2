package editor

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xela07ax/guia-juridico-web/internal/domain"
)

func validForm() Form {
	f := NewForm()
	f.Title = "Estágio"
	f.Company = "TJ"
	f.Location = "SP"
	f.Description = "Descrição"
	return f
}

func TestNewFormDefaults(t *testing.T) {
	f := NewForm()
	assert.Equal(t, "Estágio", f.Type)
	assert.Equal(t, "estagio.jpg", f.Image)
	assert.False(t, f.Editing())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Form)
		want   domain.FieldErrors
	}{
		{"valid", func(*Form) {}, domain.FieldErrors{}},
		{"blank required fields", func(f *Form) {
			f.Title, f.Company, f.Location, f.Description, f.Type = " ", "", "\t", "", ""
		}, domain.FieldErrors{
			"title":       "Título é obrigatório",
			"company":     "Empresa é obrigatória",
			"location":    "Localização é obrigatória",
			"description": "Descrição é obrigatória",
			"type":        "Tipo é obrigatório",
		}},
		{"unknown type", func(f *Form) { f.Type = "Concurso" }, domain.FieldErrors{"type": "Tipo inválido"}},
		{"closing equal to opening", func(f *Form) {
			f.OpeningDate, f.ClosingDate = "2024-05-10", "2024-05-10"
		}, domain.FieldErrors{"closingDate": "Data de encerramento deve ser posterior à data de abertura"}},
		{"closing before opening", func(f *Form) {
			f.OpeningDate, f.ClosingDate = "2024-05-10", "2024-05-01"
		}, domain.FieldErrors{"closingDate": "Data de encerramento deve ser posterior à data de abertura"}},
		{"only one date", func(f *Form) { f.ClosingDate = "2024-05-01" }, domain.FieldErrors{}},
		{"closing after opening", func(f *Form) {
			f.OpeningDate, f.ClosingDate = "2024-05-01", "2024-05-02"
		}, domain.FieldErrors{}},
		{"garbage date", func(f *Form) { f.OpeningDate = "amanhã" }, domain.FieldErrors{"openingDate": "Data inválida"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			assert.Equal(t, tt.want, f.Validate())
		})
	}
}

func TestRequirementsRoundTrip(t *testing.T) {
	rec := domain.ListingRecord{
		ID:           3,
		Requirements: json.RawMessage(`"[\"OAB ativa\",\"Inglês\"]"`),
		OpeningDate:  "2024-05-01T00:00:00",
	}
	f := FormFromRecord(rec)
	assert.True(t, f.Editing())
	assert.Equal(t, "OAB ativa\nInglês", f.Requirements)
	assert.Equal(t, "2024-05-01", f.OpeningDate)
	assert.Equal(t, "Estágio", f.Type)
	assert.Equal(t, "estagio.jpg", f.Image)

	f.Requirements = "OAB ativa\r\n\n  Inglês  \n\n"
	assert.Equal(t, `["OAB ativa","Inglês"]`, f.Payload().Requirements)

	f.Requirements = ""
	assert.Equal(t, `[]`, f.Payload().Requirements)
}

func TestFormFromValues(t *testing.T) {
	v := url.Values{
		"title":        {"T"},
		"type":         {"Congresso"},
		"image":        {"congresso.jpg"},
		"requirements": {"a\nb"},
		"closingDate":  {" 2024-06-01 "},
	}
	f := FormFromValues(9, v)
	assert.Equal(t, int64(9), f.ID)
	assert.Equal(t, "Congresso", f.Type)
	assert.Equal(t, "2024-06-01", f.ClosingDate)
	assert.Equal(t, `["a","b"]`, f.Payload().Requirements)
}
