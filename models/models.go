package models

import (
	"time"
)

// Role is the access level a user holds on the platform.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// Roles lists every accepted role value. Request validation takes its enum
// from here.
var Roles = []Role{RoleAdmin, RoleModerator, RoleUser}

type User struct {
	ID               uint   `gorm:"primaryKey"`
	Username         string `gorm:"size:150;uniqueIndex;not null"`
	Email            string `gorm:"size:254;uniqueIndex;not null"`
	FirstName        string `gorm:"size:150"`
	LastName         string `gorm:"size:150"`
	Bio              string `gorm:"size:500"`
	Role             Role   `gorm:"size:16;not null;default:user"`
	IsSuperuser      bool   `gorm:"not null;default:false"`
	ConfirmationCode string `gorm:"size:32"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsAdmin is true for the admin role and for superusers regardless of role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsSuperuser
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:256;not null;index"`
	Slug string `gorm:"size:50;uniqueIndex;not null"`
}

type Genre struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:256;not null;index"`
	Slug string `gorm:"size:50;uniqueIndex;not null"`
}

type Title struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"size:256;not null;index"`
	Year        int       `gorm:"not null;index"`
	Description string    `gorm:"type:text"`
	CategoryID  *uint     `gorm:"index"`
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Genres      []Genre   `gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`

	// Rating is the average review score, filled by store queries only.
	Rating *float64 `gorm:"->;-:migration"`
}

type Review struct {
	ID       uint      `gorm:"primaryKey"`
	TitleID  uint      `gorm:"not null;uniqueIndex:idx_reviews_title_author"`
	Title    *Title    `gorm:"constraint:OnDelete:CASCADE;"`
	AuthorID uint      `gorm:"not null;uniqueIndex:idx_reviews_title_author"`
	Author   *User     `gorm:"constraint:OnDelete:CASCADE;"`
	Text     string    `gorm:"type:text;not null"`
	Score    int       `gorm:"not null"`
	PubDate  time.Time `gorm:"autoCreateTime;index"`
}

func (r *Review) GetAuthorID() uint {
	return r.AuthorID
}

type Comment struct {
	ID       uint      `gorm:"primaryKey"`
	ReviewID uint      `gorm:"not null;index"`
	Review   *Review   `gorm:"constraint:OnDelete:CASCADE;"`
	AuthorID uint      `gorm:"not null;index"`
	Author   *User     `gorm:"constraint:OnDelete:CASCADE;"`
	Text     string    `gorm:"type:text;not null"`
	PubDate  time.Time `gorm:"autoCreateTime;index"`
}

func (c *Comment) GetAuthorID() uint {
	return c.AuthorID
}

// All lists every model in dependency order for migrations.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Genre{},
		&Title{},
		&Review{},
		&Comment{},
	}
}
