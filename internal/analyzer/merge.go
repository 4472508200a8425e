package analyzer

import (
	"strings"

	"github.com/fachebot/chat-insight/internal/model"
)

// mergeChunkResults 按分块顺序确定性地合并分块结果
// 总结按块序拼接（单块时原样透传）；话题和待办跨块并集，按小写去重并保留首见的写法和顺序；
// 同一参与者在多个分块出现时，各块小结按块序拼接为一段。
// participants 为过滤后转写的参与者集合，小结键严格限制在该集合内；
// 分析未产出可用内容的参与者直接缺席映射，不会映射到空串。
func mergeChunkResults(results []*chunkAnalysis, participants []string) *model.AnalysisResult {
	result := emptyResult()

	known := make(map[string]bool, len(participants))
	for _, name := range participants {
		known[name] = true
	}

	var summaries []string
	seenTopics := make(map[string]bool)
	seenActions := make(map[string]bool)

	for _, ca := range results {
		if ca == nil {
			result.Partial = true
			continue
		}

		if ca.summary != "" {
			summaries = append(summaries, ca.summary)
		}

		for _, topic := range ca.topics {
			key := strings.ToLower(topic)
			if !seenTopics[key] {
				seenTopics[key] = true
				result.Topics = append(result.Topics, topic)
			}
		}

		for _, item := range ca.actionItems {
			key := strings.ToLower(item)
			if !seenActions[key] {
				seenActions[key] = true
				result.ActionItems = append(result.ActionItems, item)
			}
		}

		for _, p := range ca.participants {
			if !known[p.Name] || p.Note == "" {
				continue
			}
			if existing, ok := result.ParticipantSummaries[p.Name]; ok {
				result.ParticipantSummaries[p.Name] = existing + " " + p.Note
			} else {
				result.ParticipantSummaries[p.Name] = p.Note
			}
		}
	}

	result.Summary = strings.Join(summaries, "\n\n")
	return result
}
