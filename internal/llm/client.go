package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fachebot/chat-insight/internal/config"
	"github.com/fachebot/chat-insight/internal/logger"
	"github.com/sashabaranov/go-openai"
)

// ErrServiceUnavailable 模型服务不可达
var ErrServiceUnavailable = errors.New("模型服务不可用")

// openAIClientInterface 定义 OpenAI 客户端接口，便于测试
type openAIClientInterface interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// Client 兼容 OpenAI API 的单轮文本补全客户端
// 每次调用无状态，对本地 Ollama（/v1 端点）、vLLM 和 OpenAI 通用
type Client struct {
	config       *config.LLM
	openaiClient openAIClientInterface
	timeout      time.Duration
}

func NewClient(cfg *config.LLM) *Client {
	openaiConfig := openai.DefaultConfig(cfg.APIKey)
	openaiConfig.BaseURL = cfg.BaseURL

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &Client{
		config:       cfg,
		openaiClient: openai.NewClientWithConfig(openaiConfig),
		timeout:      timeout,
	}
}

// Generate 执行一次单轮文本补全，返回去除 Markdown 代码块包裹的文本
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
	}

	resp, err := c.openaiClient.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("调用 LLM API 失败: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM API 返回空结果")
	}

	return stripFences(resp.Choices[0].Message.Content), nil
}

const visionPrompt = `This is a screenshot of a WhatsApp group chat. ` +
	`Extract ALL the chat messages exactly as they appear. ` +
	`Format each message as: DD/MM/YYYY, HH:MM - Sender: message
` +
	`Include timestamps, sender names, and full message text. ` +
	`Do not add any commentary, just output the extracted messages.`

// ExtractImageText 使用视觉模型从聊天截图中提取文本
func (c *Client) ExtractImageText(ctx context.Context, image []byte) (string, error) {
	if c.config.VisionModel == "" {
		return "", fmt.Errorf("未配置视觉模型")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	encoded := base64.StdEncoding.EncodeToString(image)
	req := openai.ChatCompletionRequest{
		Model: c.config.VisionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: visionPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:image/png;base64," + encoded,
						},
					},
				},
			},
		},
	}

	resp, err := c.openaiClient.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("调用视觉模型失败: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("视觉模型返回空结果")
	}

	return stripFences(resp.Choices[0].Message.Content), nil
}

// CheckAvailability 检查模型服务是否可达且配置的模型存在
func (c *Client) CheckAvailability(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	list, err := c.openaiClient.ListModels(ctx)
	if err != nil {
		logger.Debugf("[LLM] 模型列表查询失败: %v", err)
		return false
	}

	for _, m := range list.Models {
		if strings.Contains(m.ID, c.config.Model) {
			return true
		}
	}
	return false
}

// stripFences 去除模型输出外层的 Markdown 代码块包裹
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
