package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/validator"
	"github.com/google/uuid"
)

type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

func (r *CreateOrganizationRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type UpdateOrganizationRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

func (r *UpdateOrganizationRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type OrganizationResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrganizationListResponse struct {
	Success       bool                   `json:"success"`
	Organizations []OrganizationResponse `json:"organizations"`
}

type CreateAppRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

func (r *CreateAppRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type UpdateAppRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

func (r *UpdateAppRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type AppResponse struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	Role           string    `json:"role,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type AppListResponse struct {
	Success bool          `json:"success"`
	Apps    []AppResponse `json:"apps"`
}
