package svc

import (
	"context"

	"github.com/fachebot/chat-insight/internal/analyzer"
	"github.com/fachebot/chat-insight/internal/config"
	"github.com/fachebot/chat-insight/internal/decoder"
	"github.com/fachebot/chat-insight/internal/health"
	"github.com/fachebot/chat-insight/internal/llm"
	"github.com/fachebot/chat-insight/internal/model"
	"github.com/fachebot/chat-insight/internal/parser"
)

// TranscriptAnalyzer 完整分析接口（便于测试注入脚本化实现）
type TranscriptAnalyzer interface {
	Analyze(ctx context.Context, t *model.Transcript) (*model.AnalysisResult, error)
}

type ServiceContext struct {
	Config    *config.Config
	LLMClient *llm.Client
	Decoders  *decoder.Registry
	Parser    *parser.Parser
	Analyzer  TranscriptAnalyzer
	Health    health.Status

	healthChecker *health.Checker
}

func NewServiceContext(c *config.Config) *ServiceContext {
	llmClient := llm.NewClient(&c.LLM)

	// 注册各格式的解码器；配置了视觉模型时截图优先走视觉模型提取
	registry := decoder.NewRegistry()
	registry.Register(decoder.KindText, decoder.NewTextDecoder())
	registry.Register(decoder.KindPDF, decoder.NewPDFDecoder())
	registry.Register(decoder.KindDocx, decoder.NewDocxDecoder())
	var vision decoder.VisionExtractor
	if c.LLM.VisionModel != "" {
		vision = llmClient
	}
	registry.Register(decoder.KindImage, decoder.NewImageDecoder(vision, c.OCR.Languages))

	checker := health.NewChecker(llmClient, c.Health.Cron)

	return &ServiceContext{
		Config:        c,
		LLMClient:     llmClient,
		Decoders:      registry,
		Parser:        parser.New(),
		Analyzer:      analyzer.NewAnalyzer(llmClient, &c.Analysis),
		Health:        checker,
		healthChecker: checker,
	}
}

// Start 启动后台组件（模型可用性探测）
func (svcCtx *ServiceContext) Start() error {
	return svcCtx.healthChecker.Start()
}

func (svcCtx *ServiceContext) Close() {
	svcCtx.healthChecker.Stop()
}
