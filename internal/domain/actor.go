package domain

// Role роль вызывающего
type Role string

const (
	RoleClient     Role = "client"
	RoleContractor Role = "contractor"
	RoleAdmin      Role = "admin"
	RoleSystem     Role = "system"
)

// IsValid проверяет, что роль известна
func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleContractor, RoleAdmin, RoleSystem:
		return true
	}
	return false
}

// Actor идентичность и роль вызывающего
type Actor struct {
	UserID int64
	Role   Role
}

// SystemActor актор фоновых процессов (expiry sweep)
func SystemActor() Actor {
	return Actor{Role: RoleSystem}
}

// IsPrivileged admin или system
func (a Actor) IsPrivileged() bool {
	return a.Role == RoleAdmin || a.Role == RoleSystem
}

// CanManageContractor владелец-исполнитель (id исполнителя совпадает с id пользователя), admin или system
func (a Actor) CanManageContractor(contractorID int64) bool {
	if a.IsPrivileged() {
		return true
	}
	return a.Role == RoleContractor && a.UserID == contractorID
}

// CanViewBooking участник бронирования или admin/system
func (a Actor) CanViewBooking(b *Booking) bool {
	return a.IsPrivileged() || b.IsParticipant(a.UserID)
}
