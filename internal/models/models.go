package models

// Role is a named permission tag referenced by users. The set is seeded at
// startup and never grows at runtime.
type Role struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"unique;not null"          json:"name"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	RoleID       uint   `gorm:"index;not null"           json:"-"`
	Role         Role   `json:"role"`
}

// RefreshToken records an issued refresh token. A row being present and not
// yet past ExpiresAt is what makes a refresh token live; expired rows are not
// purged, they are simply treated as misses.
type RefreshToken struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Token     string `gorm:"unique;not null"          json:"token"`
	ExpiresAt int64  `gorm:"not null"                 json:"expires_at"`
}
