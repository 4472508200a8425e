package model

import "strings"

// Chunk 按模型上下文预算切出的连续消息片段，Index 决定合并顺序
type Chunk struct {
	Index    int
	Messages []Message
}

// Text 序列化分块内的消息
func (c *Chunk) Text() string {
	lines := make([]string, len(c.Messages))
	for i := range c.Messages {
		lines[i] = c.Messages[i].Line()
	}
	return strings.Join(lines, "\n")
}

// AnalysisResult 按分块顺序合并后的分析结果
// Partial 为 true 时表示有分块的模型调用重试后仍失败，其贡献缺失
type AnalysisResult struct {
	Summary              string            `json:"summary"`
	Topics               []string          `json:"topics"`
	ActionItems          []string          `json:"action_items"`
	ParticipantSummaries map[string]string `json:"participant_summaries"`
	Partial              bool              `json:"partial"`
}

// Report 提供给展示层的最终响应
// participant_summaries 的键序由 encoding/json 对 map 键排序保证（字典序）
type Report struct {
	Summary              string            `json:"summary"`
	Topics               []string          `json:"topics"`
	ActionItems          []string          `json:"action_items"`
	ParticipantSummaries map[string]string `json:"participant_summaries"`
	MessageCount         int               `json:"message_count"`
	ParticipantCount     int               `json:"participant_count"`
	DateRange            string            `json:"date_range"`
	Partial              bool              `json:"partial"`
}
