package models

// User roles.
const (
	RoleAdmin  = "admin"
	RoleCouple = "couple"
)

// User represents a platform account: a couple owning a wedding or a back-office admin.
// Password is empty for accounts provisioned through OIDC sign-in.
type User struct {
	BaseModel

	Email       string `gorm:"not null;uniqueIndex" json:"email"`
	Password    string `json:"-"`
	DisplayName string `gorm:"type:varchar(255)" json:"display_name"`
	Role        string `gorm:"type:varchar(32);not null;default:'couple'" json:"role"`
	OIDCSubject string `gorm:"column:oidc_subject;index" json:"-"`

	MFAEnabled bool   `gorm:"default:false" json:"mfa_enabled"`
	MFASecret  string `json:"-"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	Weddings []Wedding `gorm:"foreignKey:OwnerID" json:"weddings,omitempty"`
}

// IsAdmin reports whether the account may access the tenant back-office.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
