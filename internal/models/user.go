package models

type UserRole string

const (
	UserRoleResearcher UserRole = "researcher"
	UserRoleDoctor     UserRole = "doctor"
	UserRolePatient    UserRole = "patient"
)

// ParseRole maps a raw role string to a typed role. The boolean is false for
// anything outside the three known roles.
func ParseRole(value string) (UserRole, bool) {
	switch UserRole(value) {
	case UserRoleResearcher:
		return UserRoleResearcher, true
	case UserRoleDoctor:
		return UserRoleDoctor, true
	case UserRolePatient:
		return UserRolePatient, true
	default:
		return "", false
	}
}

// CanUpload reports whether the role is allowed to send files.
func (r UserRole) CanUpload() bool {
	return r == UserRoleResearcher
}

// CanReceive reports whether the role may be listed as a file recipient and
// may view an inbox. Researchers only send; doctors and patients only receive.
func (r UserRole) CanReceive() bool {
	return r == UserRoleDoctor || r == UserRolePatient
}

type User struct {
	BaseModel
	Username     string   `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	Email        string   `json:"email" gorm:"type:varchar(255);not null"`
	Phone        string   `json:"phone" gorm:"type:varchar(30);not null"`
	PasswordHash string   `json:"-" gorm:"type:text;not null"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);not null;index"`

	Files []FileRecord `json:"-" gorm:"foreignKey:UploaderID"`
}
