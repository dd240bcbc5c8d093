package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/genai"

	"github.com/AdventSphere/advent-sphere/internal/ai"
)

// maxGenerateCount caps AI photo generations per room.
const maxGenerateCount = 5

const promptModel = "gemini-2.5-flash"
const imageModel = "imagen-3.0-generate-002"

const promptSystemInstruction = `
You are a prompt generator for image creation. Given a theme from the user, output strictly a valid JSON object with two keys: "feedback" and "query".

- "feedback": A short, concise comment or suggestion for the user.
- "query": A vivid and detailed image generation prompt in English based on the context.

Do not output any text outside the JSON object.
`

type AIService struct {
	db     *pgxpool.Pool
	client *genai.Client
}

func NewAIService(ctx context.Context, db *pgxpool.Pool) (*AIService, error) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY environment variable is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &AIService{db: db, client: client}, nil
}

// CreatePhoto generates a photo-frame image for the room and returns it
// as a base64 data URI. Each room gets maxGenerateCount generations; the
// counter only moves after a successful generation.
func (s *AIService) CreatePhoto(ctx context.Context, roomID uuid.UUID, prompt string) (*ai.CreatePhotoResponse, error) {
	var generateCount int
	err := s.db.QueryRow(ctx, `SELECT generate_count FROM rooms WHERE id = $1`, roomID).Scan(&generateCount)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if generateCount >= maxGenerateCount {
		return nil, ErrGenerateLimit
	}

	resp, err := s.client.Models.GenerateImages(ctx, imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("image generation returned no image")
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE rooms SET generate_count = generate_count + 1 WHERE id = $1`, roomID); err != nil {
		return nil, fmt.Errorf("failed to bump generate count: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(resp.GeneratedImages[0].Image.ImageBytes)
	return &ai.CreatePhotoResponse{
		ImageData: "data:image/png;base64," + encoded,
	}, nil
}

// CreatePrompt refines an image-generation prompt from a theme and the
// running conversation, constrained to a JSON object so the answer always
// parses.
func (s *AIService) CreatePrompt(ctx context.Context, req *ai.CreatePromptRequest) (*ai.CreatePromptResponse, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(promptSystemInstruction, genai.RoleUser),
	}
	for _, msg := range req.History {
		role := genai.Role(genai.RoleUser)
		if msg.Role != "user" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	contents = append(contents, genai.NewContentFromText("Theme: "+req.Prompt, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"feedback": {
					Type:        genai.TypeString,
					Description: "Conversational feedback helping the user refine their image idea",
				},
				"query": {
					Type:        genai.TypeString,
					Description: "The refined image generation prompt built from the conversation",
				},
			},
			Required: []string{"feedback", "query"},
		},
	}

	completion, err := s.client.Models.GenerateContent(ctx, promptModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate prompt: %w", err)
	}

	var out struct {
		Feedback string `json:"feedback"`
		Query    string `json:"query"`
	}
	if err := json.Unmarshal([]byte(completion.Text()), &out); err != nil {
		log.Printf("AI prompt: unparsable model output: %v", err)
		return nil, fmt.Errorf("failed to parse model output: %w", err)
	}

	return &ai.CreatePromptResponse{Prompt: out.Query, Feedback: out.Feedback}, nil
}
