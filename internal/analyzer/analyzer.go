package analyzer

import (
	"context"
	"fmt"

	"github.com/fachebot/chat-insight/internal/config"
	"github.com/fachebot/chat-insight/internal/llm"
	"github.com/fachebot/chat-insight/internal/logger"
	"github.com/fachebot/chat-insight/internal/model"
	"golang.org/x/sync/errgroup"
)

// generator 文本生成接口（便于测试注入脚本化实现）
type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Analyzer 切块、调用模型并合并分块结果的编排器
// 每次 Analyze 调用无共享可变状态，可并发服务多个请求
type Analyzer struct {
	llmClient generator
	cfg       *config.Analysis
}

func NewAnalyzer(llmClient *llm.Client, cfg *config.Analysis) *Analyzer {
	return &Analyzer{
		llmClient: llmClient,
		cfg:       cfg,
	}
}

// Analyze 对转写执行完整分析：切块、并发调用模型、按块序合并
// 单块调用失败原样重试一次，仍失败时该块的贡献缺失并标记结果为部分结果；
// 全部分块都失败视为模型服务不可用，整个请求报错。
// 零消息的转写直接返回空结果，不发起任何模型调用。
func (a *Analyzer) Analyze(ctx context.Context, t *model.Transcript) (*model.AnalysisResult, error) {
	if len(t.Messages) == 0 {
		return emptyResult(), nil
	}

	chunks := splitIntoChunks(t.Messages, a.cfg.MaxChunkChars, a.cfg.MaxChunkMessages)
	logger.Infof("[Analyzer] 将 %d 条消息切分为 %d 个分块", len(t.Messages), len(chunks))

	// 分块之间相互独立，可以并发调用；合并阶段按块序重新排序，
	// 并发度上限避免压垮单实例的本地模型服务
	results := make([]*chunkAnalysis, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)

	for _, chunk := range chunks {
		g.Go(func() error {
			ca, err := a.analyzeChunk(gctx, chunk)
			if err != nil {
				if gctx.Err() != nil {
					// 请求取消时中止其余分块
					return gctx.Err()
				}
				logger.Warnf("[Analyzer] 分块 %d 重试后仍失败，该块贡献缺失: %v", chunk.Index, err)
				return nil
			}
			results[chunk.Index] = ca
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("分析已取消: %w", err)
	}

	succeeded := 0
	for _, ca := range results {
		if ca != nil {
			succeeded++
		}
	}
	if succeeded == 0 {
		return nil, fmt.Errorf("全部 %d 个分块分析失败: %w", len(chunks), llm.ErrServiceUnavailable)
	}

	result := mergeChunkResults(results, t.Participants)
	logger.Infof("[Analyzer] 合并完成: %d/%d 个分块成功, %d 个话题, %d 个待办",
		succeeded, len(chunks), len(result.Topics), len(result.ActionItems))
	return result, nil
}

// analyzeChunk 对单个分块执行一次模型调用，失败后用相同输入重试一次
func (a *Analyzer) analyzeChunk(ctx context.Context, chunk model.Chunk) (*chunkAnalysis, error) {
	prompt := buildChunkPrompt(chunk, a.cfg.MaxParticipants)

	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		raw, err := a.llmClient.Generate(ctx, prompt)
		if err == nil {
			ca := parseChunkResponse(raw)
			ca.index = chunk.Index
			return ca, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
		logger.Warnf("[Analyzer] 分块 %d 第 %d 次调用失败: %v", chunk.Index, attempt, err)
	}
	return nil, lastErr
}

func emptyResult() *model.AnalysisResult {
	return &model.AnalysisResult{
		Topics:               []string{},
		ActionItems:          []string{},
		ParticipantSummaries: map[string]string{},
	}
}
