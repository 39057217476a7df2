package domain

import "time"

// Status — жизненный цикл публикации, всегда вычисляется по датам
type Status string

const (
	StatusEmBreve    Status = "Em Breve"
	StatusAbertas    Status = "Abertas"
	StatusEncerradas Status = "Encerradas"
)

// Statuses в порядке кнопок фильтра
var Statuses = []Status{StatusAbertas, StatusEmBreve, StatusEncerradas}

// DeriveStatus — чистая функция от (opening, closing, now).
// Дата закрытия включительна до конца своих календарных суток.
// Если какой-то даты нет, публикация считается закрытой.
func DeriveStatus(opening, closing, now time.Time) Status {
	if opening.IsZero() || closing.IsZero() {
		return StatusEncerradas
	}
	// конец календарных суток закрытия в зоне самой даты
	closesAt := closing.AddDate(0, 0, 1)

	switch {
	case now.Before(opening):
		return StatusEmBreve
	case now.Before(closesAt):
		return StatusAbertas
	default:
		return StatusEncerradas
	}
}

// Label — подпись статуса на карточке
func (s Status) Label() string {
	switch s {
	case StatusAbertas:
		return "Inscrições Abertas"
	case StatusEmBreve:
		return "Abre em Breve"
	default:
		return "Inscrições Encerradas"
	}
}
