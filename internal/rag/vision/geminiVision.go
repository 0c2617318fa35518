package vision

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"sync"

	"github.com/akolanti/DocChatAPI/internal/config"
	"github.com/akolanti/DocChatAPI/pkg/logger_i"
	"google.golang.org/genai"
)

const captionPrompt = "Describe this image in two or three sentences so the description can stand in for the image in a document search index. Mention any visible text, numbers or chart values."

var logger *logger_i.Logger
var captionerInstance *GeminiCaptioner
var once sync.Once

// GeminiCaptioner produces the retrievable text surrogate for image documents.
type GeminiCaptioner struct {
	client    *genai.Client
	modelName string
}

func GetGeminiCaptioner(ctx context.Context, apikey string) *GeminiCaptioner {
	once.Do(func() {
		logger = logger_i.NewLogger("gemini_vision")
		c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
		if err != nil {
			logger.Error("Error creating Gemini vision client:", "error", err)
			return
		}
		captionerInstance = &GeminiCaptioner{client: c, modelName: config.CaptionModelName}
		logger.Info("Gemini vision client created", "model", config.CaptionModelName)
	})
	return captionerInstance
}

func (g *GeminiCaptioner) Caption(ctx context.Context, imagePath string) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", err
	}

	mimeType := mime.TypeByExtension(filepath.Ext(imagePath))
	if mimeType == "" {
		mimeType = "image/png"
	}

	contents := []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: captionPrompt},
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
			},
		},
	}

	result, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, nil)
	if err != nil {
		log.Error("Captioning call failed", "image", imagePath, "error", err)
		return "", err
	}
	return result.Text(), nil
}
