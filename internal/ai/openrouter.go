package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

type openRouterConfig struct {
	APIKey  string `json:"api_key"`
	Referer string `json:"referer"`
	Title   string `json:"title"`
}

// openRouterProvider speaks the same chat-completions wire format as
// openai but with extra attribution headers.
type openRouterProvider struct {
	apiKey  string
	referer string
	title   string
}

func (p *openRouterProvider) Name() string {
	return "openrouter"
}

func (p *openRouterProvider) Generate(ctx context.Context, model string, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", ErrUnavailable
	}
	endpoint := openRouterBaseURL + "/chat/completions"
	reqBody := openAIChatRequest{
		Model:    model,
		Messages: []openAIChatMsg{{Role: "user", Content: prompt}},
		Stream:   false,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if p.referer != "" {
		req.Header.Set("HTTP-Referer", p.referer)
	}
	if p.title != "" {
		req.Header.Set("X-Title", p.title)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if err := classifyStatus(resp); err != nil {
		return "", err
	}
	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	content := ""
	if len(out.Choices) > 0 {
		content = strings.TrimSpace(out.Choices[0].Message.Content)
	}
	if content == "" {
		return "", fmt.Errorf("%w: no choices", ErrInvalidResponse)
	}
	return content, nil
}

func createOpenRouterFactory(args interface{}) (IAIProvider, error) {
	cfg := &openRouterConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	return &openRouterProvider{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		referer: strings.TrimSpace(cfg.Referer),
		title:   strings.TrimSpace(cfg.Title),
	}, nil
}

func init() {
	Register("openrouter", createOpenRouterFactory)
}
