package dto

type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Email    string `json:"email" binding:"required,email"`
}

type CreateRoomRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	IsPrivate    bool     `json:"isPrivate"`
	Participants []string `json:"participants"`
}

type CreateMessageRequest struct {
	Content string `json:"content" binding:"required"`
	RoomID  string `json:"roomId" binding:"required"`
}

type UpdateStatusRequest struct {
	IsOnline *bool `json:"isOnline" binding:"required"`
}
