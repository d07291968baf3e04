package assign_contractor

import (
	"fmt"
	"sort"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

// TieBreak правило упорядочивания исполнителей с равным баллом
type TieBreak string

const (
	// TieBreakByID по возрастанию ID исполнителя
	TieBreakByID TieBreak = "id"
	// TieBreakByExperience больше завершенных заказов выше, затем по ID
	TieBreakByExperience TieBreak = "experience"
)

// ParseTieBreak разбирает значение из конфигурации; пустая строка означает TieBreakByID
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(s) {
	case "", TieBreakByID:
		return TieBreakByID, nil
	case TieBreakByExperience:
		return TieBreakByExperience, nil
	}
	return "", fmt.Errorf("%w: unknown tie-break %q", ErrInvalidInput, s)
}

// Score балл исполнителя: базовый + опыт (не более MaxExperienceBonus) + совпадение специализации
func Score(c *domain.Contractor, category string) int {
	score := domain.BaseScore

	experience := c.CompletedBookingsCount * domain.ExperiencePerBooking
	if experience > domain.MaxExperienceBonus {
		experience = domain.MaxExperienceBonus
	}
	if experience > 0 {
		score += experience
	}

	if c.HasSpecialty(category) {
		score += domain.SpecialtyBonus
	}
	return score
}

// Rank рассчитывает баллы и сортирует по убыванию.
// Расстояние вычисляется только для отображения и на балл не влияет.
func Rank(contractors []*domain.Contractor, category string, location *domain.GeoPoint, tieBreak TieBreak) []Candidate {
	candidates := make([]Candidate, 0, len(contractors))
	for _, c := range contractors {
		candidate := Candidate{
			ContractorID:      c.ID,
			FullName:          c.FullName,
			Email:             c.Email,
			Phone:             c.Phone,
			Score:             Score(c, category),
			CompletedBookings: c.CompletedBookingsCount,
			SpecialtyMatch:    c.HasSpecialty(category),
		}
		if location != nil && c.Location != nil {
			candidate.DistanceKm = ptr.Ptr(location.DistanceKm(*c.Location))
		}
		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if tieBreak == TieBreakByExperience && a.CompletedBookings != b.CompletedBookings {
			return a.CompletedBookings > b.CompletedBookings
		}
		return a.ContractorID < b.ContractorID
	})

	return candidates
}

// split первый кандидат и не более maxAlternatives следующих
func split(ranked []Candidate, maxAlternatives int) (Candidate, []Candidate) {
	rest := ranked[1:]
	if len(rest) > maxAlternatives {
		rest = rest[:maxAlternatives]
	}
	return ranked[0], rest
}
