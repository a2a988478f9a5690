package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"healthcopilot/internal/config"
)

// transcribeInstruction asks the model to act as a plain speech-to-text
// collaborator rather than answering the audio's content.
const transcribeInstruction = "Transcribe the spoken audio verbatim. " +
	"Return only the transcript text, with no commentary. " +
	"If no speech is present, return nothing."

// geminiClient implements Client using Google's Gemini API.
type geminiClient struct {
	genaiClient     *genai.Client
	log             *slog.Logger
	contentConfig   *genai.GenerateContentConfig
	modelName       string
	transcribeModel string
	maxRetries      int
	retryDelay      time.Duration
}

// newGeminiClient creates a Gemini-backed AI client with the provided
// configuration. Decoding parameters are fixed here for the client's lifetime.
func newGeminiClient(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (*geminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	baseCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}

	transcribeModel := cfg.TranscribeModel
	if transcribeModel == "" {
		transcribeModel = cfg.Model
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.Model)
	return &geminiClient{
		genaiClient:     gi,
		log:             logger,
		contentConfig:   baseCfg,
		modelName:       cfg.Model,
		transcribeModel: transcribeModel,
		maxRetries:      cfg.MaxRetries,
		retryDelay:      time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

// Generate renders one answer for the prompt, attaching the image when
// present. Errors are returned to the caller unretried beyond transient
// backend 5xx handling.
func (c *geminiClient) Generate(ctx context.Context, req *GenerateRequest) (string, error) {
	if req == nil || req.Prompt == "" {
		return "", errors.New("generation request requires a prompt")
	}
	c.log.DebugContext(ctx, "Generating answer", "prompt_len", len(req.Prompt), "has_image", len(req.ImageData) > 0)

	var parts []*genai.Part
	if len(req.ImageData) > 0 {
		if req.ImageMIME == "" {
			return "", errors.New("image data requires a MIME type")
		}
		parts = append(parts, genai.NewPartFromBytes(req.ImageData, req.ImageMIME))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.generateContentWithRetries(ctx, c.modelName, contents, c.contentConfig)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini answer generation failed", "error", err)
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	return c.extractTextFromResponse(ctx, resp)
}

// Transcribe converts spoken audio to text. It never reports backend
// failures as errors: a failed or empty transcription yields "".
func (c *geminiClient) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 || mimeType == "" {
		return "", nil
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(audio, mimeType),
		genai.NewPartFromText(transcribeInstruction),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.generateContentWithRetries(ctx, c.transcribeModel, contents, c.contentConfig)
	if err != nil {
		c.log.WarnContext(ctx, "Transcription failed, returning empty transcript", "error", err)
		return "", nil
	}

	text, err := c.extractTextFromResponse(ctx, resp)
	if err != nil {
		c.log.WarnContext(ctx, "Transcription returned no text", "error", err)
		return "", nil
	}
	return text, nil
}

func (c *geminiClient) generateContentWithRetries(ctx context.Context, modelName string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= c.maxRetries; i++ {
		resp, err = c.genaiClient.Models.GenerateContent(ctx, modelName, contents, cfg)
		if err == nil {
			return resp, nil
		}

		c.log.WarnContext(ctx, "Gemini API call failed, checking for retry", "attempt", i+1, "max_retries", c.maxRetries, "error", err)

		var genAiAPIError *genai.APIError
		if errors.As(err, &genAiAPIError) && (genAiAPIError.Code == 500 || genAiAPIError.Code == 503) {
			if i < c.maxRetries {
				c.log.InfoContext(ctx, "Retrying Gemini API call due to retriable APIError", "delay", c.retryDelay, "code", genAiAPIError.Code)
				time.Sleep(c.retryDelay)
				continue
			}
			return nil, fmt.Errorf("gemini API call failed after %d retries (APIError code %d): %w", c.maxRetries, genAiAPIError.Code, err)
		}

		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return nil, err
}

func (c *geminiClient) extractTextFromResponse(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reasonMsg)
		return "", fmt.Errorf("request blocked by safety filter: %s", reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", fmt.Errorf("model returned no content, finish reason: %s", finishReason)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("model returned empty text")
	}
	return text, nil
}
