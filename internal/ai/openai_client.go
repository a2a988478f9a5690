package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"healthcopilot/internal/config"
)

// openAIClient implements Client using the OpenAI API.
type openAIClient struct {
	client          *openai.Client
	log             *slog.Logger
	model           string
	transcribeModel string
	temperature     float32
	maxTokens       int
}

// newOpenAIClient creates an OpenAI-backed AI client.
func newOpenAIClient(cfg config.AIConfig, log *slog.Logger) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	transcribeModel := cfg.TranscribeModel
	if transcribeModel == "" {
		transcribeModel = openai.Whisper1
	}

	logger := log.With("component", "openai_client")
	logger.Info("OpenAI client initialized successfully", "model", cfg.Model)
	return &openAIClient{
		client:          openai.NewClientWithConfig(clientCfg),
		log:             logger,
		model:           cfg.Model,
		transcribeModel: transcribeModel,
		temperature:     cfg.Temperature,
		maxTokens:       int(cfg.MaxOutputTokens),
	}, nil
}

// Generate renders one answer for the prompt. An attached image is sent as a
// data URL content part on the same user message.
func (c *openAIClient) Generate(ctx context.Context, req *GenerateRequest) (string, error) {
	if req == nil || req.Prompt == "" {
		return "", errors.New("generation request requires a prompt")
	}

	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.ImageData) > 0 {
		if req.ImageMIME == "" {
			return "", errors.New("image data requires a MIME type")
		}
		dataURL := fmt.Sprintf("data:%s;base64,%s", req.ImageMIME, base64.StdEncoding.EncodeToString(req.ImageData))
		msg.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
		}
	} else {
		msg.Content = req.Prompt
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    []openai.ChatCompletionMessage{msg},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		c.log.ErrorContext(ctx, "OpenAI answer generation failed", "error", err)
		return "", fmt.Errorf("openai API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Transcribe converts spoken audio to text via the transcription endpoint.
// Backend failures yield an empty transcript, not an error.
func (c *openAIClient) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.transcribeModel,
		Reader:   bytes.NewReader(audio),
		FilePath: "audio" + extensionForMIME(mimeType),
	})
	if err != nil {
		c.log.WarnContext(ctx, "Transcription failed, returning empty transcript", "error", err)
		return "", nil
	}

	return strings.TrimSpace(resp.Text), nil
}

func extensionForMIME(mimeType string) string {
	switch mimeType {
	case "audio/ogg":
		return ".ogg"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/mp4", "audio/m4a":
		return ".m4a"
	}
	return ".ogg"
}
