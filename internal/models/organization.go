package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Organization is the top-level tenant. It owns apps.
type Organization struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string    `gorm:"not null;size:200;index" json:"name"`
	Status        Status    `gorm:"size:25;not null;default:'active';index" json:"status"`
	CreatedUserID uuid.UUID `gorm:"type:uuid;index" json:"created_user_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OrganizationUser grants a user visibility of an organization.
type OrganizationUser struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_organization_users_org_user" json:"organization_id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_organization_users_org_user;index" json:"user_id"`
	Role           string    `gorm:"size:20;not null;default:'member'" json:"role"`
	Status         Status    `gorm:"size:25;not null;default:'active'" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// App is a workspace inside an organization. It owns lists.
type App struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	Name           string    `gorm:"not null;size:200" json:"name"`
	Description    string    `gorm:"type:text" json:"description"`
	Status         Status    `gorm:"size:25;not null;default:'active';index" json:"status"`
	CreatedUserID  uuid.UUID `gorm:"type:uuid;index" json:"created_user_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AppUser grants a user visibility of an app.
type AppUser struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AppID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_app_users_app_user" json:"app_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_app_users_app_user;index" json:"user_id"`
	Role      string    `gorm:"size:20;not null;default:'member'" json:"role"`
	Status    Status    `gorm:"size:25;not null;default:'active'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
