package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	loc := time.UTC
	opening := time.Date(2025, 1, 10, 0, 0, 0, 0, loc)
	closing := time.Date(2025, 1, 20, 0, 0, 0, 0, loc)

	tests := []struct {
		name string
		now  time.Time
		want Status
	}{
		{"before opening", time.Date(2025, 1, 9, 0, 0, 0, 0, loc), StatusEmBreve},
		{"one second before opening", opening.Add(-time.Second), StatusEmBreve},
		{"exactly at opening", opening, StatusAbertas},
		{"middle of window", time.Date(2025, 1, 15, 12, 0, 0, 0, loc), StatusAbertas},
		{"closing day late evening", time.Date(2025, 1, 20, 23, 0, 0, 0, loc), StatusAbertas},
		{"last second of closing day", time.Date(2025, 1, 20, 23, 59, 59, 0, loc), StatusAbertas},
		{"midnight after closing day", time.Date(2025, 1, 21, 0, 0, 0, 0, loc), StatusEncerradas},
		{"just after closing day", time.Date(2025, 1, 21, 0, 0, 1, 0, loc), StatusEncerradas},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(opening, closing, tt.now))
		})
	}
}

func TestDeriveStatus_IsPure(t *testing.T) {
	opening := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	closing := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 1, 12, 8, 0, 0, 0, time.UTC)

	first := DeriveStatus(opening, closing, now)
	second := DeriveStatus(opening, closing, now)
	assert.Equal(t, first, second)
}

func TestDeriveStatus_MissingDates(t *testing.T) {
	now := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, StatusEncerradas, DeriveStatus(time.Time{}, now.AddDate(0, 0, 5), now))
	assert.Equal(t, StatusEncerradas, DeriveStatus(now.AddDate(0, 0, -5), time.Time{}, now))
}

func TestDeriveStatus_DSTClosingDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 2024-03-10 в Нью-Йорке длится 23 часа
	opening := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)
	closing := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)

	assert.Equal(t, StatusAbertas, DeriveStatus(opening, closing, time.Date(2024, 3, 10, 23, 30, 0, 0, loc)))
	assert.Equal(t, StatusEncerradas, DeriveStatus(opening, closing, time.Date(2024, 3, 11, 0, 0, 1, 0, loc)))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Inscrições Abertas", StatusAbertas.Label())
	assert.Equal(t, "Abre em Breve", StatusEmBreve.Label())
	assert.Equal(t, "Inscrições Encerradas", StatusEncerradas.Label())
}
