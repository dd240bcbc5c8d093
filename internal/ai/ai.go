package ai

import "github.com/google/uuid"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CreatePhotoRequest struct {
	Prompt string    `json:"prompt"`
	RoomID uuid.UUID `json:"room_id"`
}

type CreatePhotoResponse struct {
	ImageData string `json:"image_data"`
}

type CreatePromptRequest struct {
	Prompt  string    `json:"prompt"`
	History []Message `json:"history"`
}

// CreatePromptResponse carries the refined image prompt plus the model's
// conversational feedback on the theme.
type CreatePromptResponse struct {
	Prompt   string `json:"prompt"`
	Feedback string `json:"feedback"`
}
