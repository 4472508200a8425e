package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Server struct {
	Host           string   `yaml:"Host"`
	Port           int      `yaml:"Port"`
	MaxUploadBytes int64    `yaml:"MaxUploadBytes"` // 上传文件大小上限（字节）
	MaxConns       int      `yaml:"MaxConns"`       // 并发连接数上限，0 表示不限制
	AllowedOrigins []string `yaml:"AllowedOrigins"` // CORS 允许的来源
}

type LLM struct {
	BaseURL     string `yaml:"BaseURL"`     // 兼容 OpenAI API 的端点，如本地 Ollama 的 /v1
	APIKey      string `yaml:"APIKey"`      // 本地 Ollama 可填任意非空值
	Model       string `yaml:"Model"`       // 如 llama3.1:8b, qwen2.5:14b
	MaxTokens   int    `yaml:"MaxTokens"`   // 模型上下文窗口大小
	Timeout     int    `yaml:"Timeout"`     // 单次调用超时（秒），默认 300
	VisionModel string `yaml:"VisionModel"` // 视觉模型（如 llava），为空时截图只走 OCR
}

type Analysis struct {
	MaxChunkChars    int `yaml:"MaxChunkChars"`    // 单个分块序列化后的字符上限
	MaxChunkMessages int `yaml:"MaxChunkMessages"` // 单个分块的消息数上限
	Concurrency      int `yaml:"Concurrency"`      // 并发调用模型的分块数上限
	MaxParticipants  int `yaml:"MaxParticipants"`  // 单个分块提示词中列出的参与者上限
}

type OCR struct {
	Languages []string `yaml:"Languages"` // tesseract 语言包，如 ["eng", "chi_sim"]
}

type Health struct {
	Cron string `yaml:"Cron"` // 模型可用性探测周期，如 "@every 1m"
}

type Config struct {
	Server   Server   `yaml:"Server"`
	LLM      LLM      `yaml:"LLM"`
	Analysis Analysis `yaml:"Analysis"`
	OCR      OCR      `yaml:"OCR"`
	Health   Health   `yaml:"Health"`
}

func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var c Config
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return nil, err
	}

	c.applyDefaults()

	// 验证配置
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// applyDefaults 填充未配置项的默认值
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 16 << 20
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 300
	}
	if c.Analysis.MaxChunkChars == 0 {
		// 约 12K 字符 ≈ 3-4K token，在 8K 上下文内为提示词留出余量
		c.Analysis.MaxChunkChars = 12000
	}
	if c.Analysis.MaxChunkMessages == 0 {
		c.Analysis.MaxChunkMessages = 400
	}
	if c.Analysis.Concurrency == 0 {
		c.Analysis.Concurrency = 2
	}
	if c.Analysis.MaxParticipants == 0 {
		c.Analysis.MaxParticipants = 10
	}
	if len(c.OCR.Languages) == 0 {
		c.OCR.Languages = []string{"eng"}
	}
	if c.Health.Cron == "" {
		c.Health.Cron = "@every 1m"
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	// 验证 Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("Server.Port 必须在 1-65535 之间")
	}
	if c.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("Server.MaxUploadBytes 必须 >= 0")
	}
	if c.Server.MaxConns < 0 {
		return fmt.Errorf("Server.MaxConns 必须 >= 0")
	}

	// 验证 LLM
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM.APIKey 不能为空")
	}
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("LLM.BaseURL 不能为空")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("LLM.Model 不能为空")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM.MaxTokens 必须大于 0")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM.Timeout 必须大于 0")
	}

	// 验证 Analysis
	if c.Analysis.MaxChunkChars <= 0 {
		return fmt.Errorf("Analysis.MaxChunkChars 必须大于 0")
	}
	if c.Analysis.MaxChunkMessages <= 0 {
		return fmt.Errorf("Analysis.MaxChunkMessages 必须大于 0")
	}
	if c.Analysis.Concurrency <= 0 {
		return fmt.Errorf("Analysis.Concurrency 必须大于 0")
	}
	if c.Analysis.MaxParticipants <= 0 {
		return fmt.Errorf("Analysis.MaxParticipants 必须大于 0")
	}

	return nil
}
