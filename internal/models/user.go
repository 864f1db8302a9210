package models

import "time"

const (
	GenderMale        = "MALE"
	GenderFemale      = "FEMALE"
	GenderOther       = "OTHER"
	GenderNotProvided = "NOT PROVIDED"
)

var Genders = []string{GenderMale, GenderFemale, GenderOther, GenderNotProvided}

type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement"  json:"id"`
	Email        string     `gorm:"size:254;uniqueIndex;not null" json:"email"`
	FirstName    string     `gorm:"size:50;not null"          json:"first_name"`
	LastName     string     `gorm:"size:50;not null"          json:"last_name"`
	PasswordHash string     `gorm:"not null"                  json:"-"`
	IsStaff      bool       `gorm:"not null;default:false"    json:"-"`
	Gender       *string    `gorm:"size:12"                   json:"gender"`
	Birthday     *time.Time `                                 json:"birthday"`
	PhoneNumber  *string    `gorm:"size:20"                   json:"phone_number"`
	CreatedAt    time.Time  `                                 json:"-"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"               json:"id"`
	Token     string `gorm:"uniqueIndex;not null"     json:"-"`
	UserID    uint   `gorm:"index;not null"           json:"user_id"`
	JTI       string `gorm:"uniqueIndex;not null"     json:"jti"`
	ExpiresAt int64  `gorm:"not null"                 json:"expires_at"`
	Revoked   bool   `gorm:"not null;default:false"   json:"revoked"`
}
