package domain

import (
	"math"
	"strings"
)

const earthRadiusKm = 6371.0

// GeoPoint координаты
type GeoPoint struct {
	Lat float64
	Lng float64
}

// DistanceKm расстояние по большому кругу (формула гаверсинусов)
func (p GeoPoint) DistanceKm(other GeoPoint) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(other.Lat - p.Lat)
	dLng := toRad(other.Lng - p.Lng)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(p.Lat))*math.Cos(toRad(other.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Contractor исполнитель. Для ядра только чтение.
type Contractor struct {
	ID                     int64
	FullName               string
	Email                  string
	Phone                  *string
	Specialties            []string
	Location               *GeoPoint
	CompletedBookingsCount int
	IsActive               bool
}

// HasSpecialty сравнение категорий без учета регистра
func (c *Contractor) HasSpecialty(category string) bool {
	if category == "" {
		return false
	}
	for _, s := range c.Specialties {
		if strings.EqualFold(s, category) {
			return true
		}
	}
	return false
}
