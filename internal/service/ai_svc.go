package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrAIDisabled 未配置 API Key 时返回
var ErrAIDisabled = errors.New("AI service is not configured")

// GeneratedContent AI 返回的结构化数据
type GeneratedContent struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// AIService 商品文案生成
type AIService struct {
	ApiKey       string
	ModelVersion string // 支持配置，如 "gemini-2.5-flash"
}

// NewAIService 支持传入模型版本
func NewAIService(apiKey string, modelVersion string) *AIService {
	if modelVersion == "" {
		modelVersion = "gemini-2.5-flash"
	}
	return &AIService{
		ApiKey:       apiKey,
		ModelVersion: modelVersion,
	}
}

// Enabled 是否可用 (未配置 Key 时接口直接报 503)
func (s *AIService) Enabled() bool {
	return s.ApiKey != ""
}

// GenerateProductInfo 根据关键词生成标题/描述/标签
// extraInstruction: 允许用户传入额外的 Prompt 指令，例如 "Focus on SEO"
func (s *AIService) GenerateProductInfo(ctx context.Context, keywords string, extraInstruction string) (*GeneratedContent, error) {
	if !s.Enabled() {
		return nil, ErrAIDisabled
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(s.ApiKey))
	if err != nil {
		return nil, fmt.Errorf("Gemini 初始化失败: %v", err)
	}
	defer client.Close()

	modelAI := client.GenerativeModel(s.ModelVersion)
	modelAI.ResponseMIMEType = "application/json"

	basePrompt := fmt.Sprintf(`
        You are a copywriter for an e-commerce storefront.
        Generate a product listing based on these keywords/features: "%s".

        Requirements:
        1. Title: SEO friendly, max 140 chars.
        2. Description: Engaging, sales-oriented.
        3. Tags: up to 13 comma-separated keywords.
    `, keywords)

	if extraInstruction != "" {
		basePrompt += fmt.Sprintf("\nAdditional User Instructions: %s", extraInstruction)
	}

	basePrompt += `
        Output Schema (JSON):
        {
            "title": "string",
            "description": "string",
            "tags": ["string", "string"]
        }
    `

	resp, err := modelAI.GenerateContent(ctx, genai.Text(basePrompt))
	if err != nil {
		return nil, fmt.Errorf("AI 生成失败: %v", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("AI 返回为空")
	}

	var rawJSON string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			rawJSON = string(txt)
			break
		}
	}

	// 清洗可能存在的 markdown 符号 (```json ... ```)
	rawJSON = strings.TrimPrefix(rawJSON, "```json")
	rawJSON = strings.TrimPrefix(rawJSON, "```")
	rawJSON = strings.TrimSuffix(rawJSON, "```")

	var result GeneratedContent
	if err := json.Unmarshal([]byte(rawJSON), &result); err != nil {
		return nil, fmt.Errorf("JSON 解析失败: %v | 原始数据: %s", err, rawJSON)
	}

	return &result, nil
}
