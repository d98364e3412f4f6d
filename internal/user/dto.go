// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type UpdateUserRequest struct {
	Name  *string `json:"name,omitempty"  validate:"omitempty,min=1,max=100"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended deactivated"`
}

// UserResponse is the public view of a User. It never carries the
// password hash or token version.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListUsersParams filters the admin listing. Search matches name or
// email; empty filters are ignored.
type ListUsersParams struct {
	Page   int
	Limit  int
	Search string
	Role   string
	Status string
}

func (p *ListUsersParams) Normalize() {
	p.Page = max(p.Page, 1)
	if p.Limit < 1 {
		p.Limit = defaultPageSize
	}
	p.Limit = min(p.Limit, maxPageSize)
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out
}
