package dto

import (
	"time"

	"github.com/spec-kit/event-service/internal/domain"
)

// UserRegisterRequest payload for new accounts. ADMIN cannot be self-assigned.
type UserRegisterRequest struct {
	Name     string      `json:"name" validate:"required,max=100"`
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"required,min=8,max=72"`
	Role     domain.Role `json:"role" validate:"omitempty,oneof=ORGANIZER ATTENDEE"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserUpdateRequest payload for profile changes; absent fields are kept.
type UserUpdateRequest struct {
	Name     *string      `json:"name" validate:"omitempty,min=1,max=100"`
	Email    *string      `json:"email" validate:"omitempty,email,max=255"`
	Password *string      `json:"password" validate:"omitempty,min=8,max=72"`
	Role     *domain.Role `json:"role" validate:"omitempty,oneof=ADMIN ORGANIZER ATTENDEE"`
	Active   *bool        `json:"is_active"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Active    bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// UserSummary is the nested view used inside other resources.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewAuthResponse renders an issued token.
func NewAuthResponse(token *domain.Token) AuthResponse {
	return AuthResponse{AccessToken: token.Value, TokenType: "bearer", ExpiresAt: token.ExpiresAt}
}

// NewUserResponse renders a user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// NewUserResponses renders a list of users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
