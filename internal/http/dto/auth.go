package dto

import (
	"time"

	"chatdash.app/api/internal/model"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Password string `json:"password" binding:"required,max=128"`
}

type SessionResponse struct {
	SessionID string        `json:"sessionId,omitempty"`
	Username  string        `json:"username"`
	CreatedAt time.Time     `json:"createdAt"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      *UserResponse `json:"user,omitempty"`
}

// UserResponse is the profile card of the upstream account.
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func ToUserResponse(u *model.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.DisplayName(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// ToSessionResponse never exposes the upstream token.
func ToSessionResponse(s *model.Session, withID bool) SessionResponse {
	resp := SessionResponse{
		Username:  s.Username,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
	if withID {
		resp.SessionID = s.ID
	}
	return resp
}
