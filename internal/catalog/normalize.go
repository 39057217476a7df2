package catalog

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/xela07ax/guia-juridico-web/internal/domain"
)

// Normalizer — единственная точка, где ответ бэкенда превращается
// в domain.Listing: требования, картинка и статус по датам.
type Normalizer struct {
	Assets *Assets
	Loc    *time.Location
	Now    func() time.Time
}

func NewNormalizer(assets *Assets, loc *time.Location, now func() time.Time) *Normalizer {
	if assets == nil {
		assets = NewAssets("")
	}
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Normalizer{Assets: assets, Loc: loc, Now: now}
}

func (n *Normalizer) Normalize(r domain.ListingRecord) domain.Listing {
	// битая дата ведет себя как отсутствующая
	opening, _ := domain.ParseDate(r.OpeningDate, n.Loc)
	closing, _ := domain.ParseDate(r.ClosingDate, n.Loc)

	return domain.Listing{
		ID:              r.ID,
		Title:           r.Title,
		Company:         r.Company,
		Location:        r.Location,
		Description:     r.Description,
		Requirements:    domain.ParseRequirements(r.Requirements),
		Salary:          r.Salary,
		ApplicationLink: strings.TrimSpace(r.ApplicationLink),
		Type:            domain.ListingType(r.Type),
		Image:           n.Assets.Resolve(r.Image),
		OpeningDate:     opening,
		ClosingDate:     closing,
		Status:          domain.DeriveStatus(opening, closing, n.Now()),
	}
}

func (n *Normalizer) NormalizeAll(records []domain.ListingRecord) []domain.Listing {
	return lo.Map(records, func(r domain.ListingRecord, _ int) domain.Listing {
		return n.Normalize(r)
	})
}
