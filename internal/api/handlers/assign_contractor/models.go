package assign_contractor

import (
	"time"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	assignContractor "github.com/m04kA/SMC-SchedulingService/internal/usecase/assign_contractor"
)

// LocationRequest координаты адреса клиента
type LocationRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// AssignRequest HTTP request model
type AssignRequest struct {
	Date            string           `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime       string           `json:"startTime" validate:"required,datetime=15:04"`
	EndTime         string           `json:"endTime" validate:"required,datetime=15:04"`
	Timezone        string           `json:"timezone,omitempty" validate:"omitempty,timezone"`
	ServiceCategory string           `json:"serviceCategory" validate:"required,max=100"`
	Location        *LocationRequest `json:"location,omitempty"`
}

// CandidateResponse исполнитель с баллом
type CandidateResponse struct {
	ContractorID      int64    `json:"contractorId"`
	FullName          string   `json:"fullName"`
	Score             int      `json:"score"`
	CompletedBookings int      `json:"completedBookings"`
	SpecialtyMatch    bool     `json:"specialtyMatch"`
	DistanceKm        *float64 `json:"distanceKm,omitempty"`
}

// AssignResponse HTTP response model
type AssignResponse struct {
	Recommended    CandidateResponse   `json:"recommended"`
	Alternatives   []CandidateResponse `json:"alternatives"`
	TotalAvailable int                 `json:"totalAvailable"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *AssignRequest) ToUseCaseRequest() (*assignContractor.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}
	req := &assignContractor.Request{
		Date:            date,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Timezone:        r.Timezone,
		ServiceCategory: r.ServiceCategory,
	}
	if r.Location != nil {
		req.Location = &domain.GeoPoint{Lat: r.Location.Lat, Lng: r.Location.Lng}
	}
	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response.
// Контакты исполнителей не раскрываются на публичном маршруте.
func FromUseCaseResponse(resp *assignContractor.Response) *AssignResponse {
	alternatives := make([]CandidateResponse, 0, len(resp.Alternatives))
	for _, c := range resp.Alternatives {
		alternatives = append(alternatives, fromCandidate(c))
	}
	return &AssignResponse{
		Recommended:    fromCandidate(resp.Recommended),
		Alternatives:   alternatives,
		TotalAvailable: resp.TotalAvailable,
	}
}

func fromCandidate(c assignContractor.Candidate) CandidateResponse {
	return CandidateResponse{
		ContractorID:      c.ContractorID,
		FullName:          c.FullName,
		Score:             c.Score,
		CompletedBookings: c.CompletedBookings,
		SpecialtyMatch:    c.SpecialtyMatch,
		DistanceKm:        c.DistanceKm,
	}
}
