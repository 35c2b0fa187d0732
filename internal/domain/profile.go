package domain

import "time"

// Profile is the signed-in user as returned by /user/profile
type Profile struct {
	ID             string    `json:"_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Bio            string    `json:"bio,omitempty"`
	JoinedAt       time.Time `json:"joinedAt"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
}

// UserStory is a row of /stories/user
type UserStory struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CoverImage  string    `json:"coverImage,omitempty"`
	Chapters    int       `json:"chapters"`
	Views       int       `json:"views"`
	Likes       int       `json:"likes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProfilePage bundles the data rendered on /profile
type ProfilePage struct {
	Profile Profile
	Stories []UserStory
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// AuthResponse is the reply of the auth endpoints: a token or a message
type AuthResponse struct {
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}
