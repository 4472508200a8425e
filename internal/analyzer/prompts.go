package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fachebot/chat-insight/internal/model"
)

// 单个分块的组合提示词：一次调用同时产出总结、话题、待办和参与者小结
const analyzeChunkPrompt = `Analyze this WhatsApp group chat. Respond ONLY in the exact format below, no extra text.

CHAT:
%s

Respond in this EXACT format:

SUMMARY:
(3-5 sentence summary of the conversation)

TOPICS:
- (topic 1)
- (topic 2)
- (add more as needed)

ACTION ITEMS:
- (Person: action item 1)
- (Person: action item 2)
- (add more as needed)

PARTICIPANTS:
%s`

const participantLine = "- %s: (1-2 sentence summary of their contributions)"

// buildChunkPrompt 构造分块的分析提示词
// 参与者列表只包含该分块中出现的发送者，超出上限时截断
func buildChunkPrompt(chunk model.Chunk, maxParticipants int) string {
	participants := chunkParticipants(chunk)
	if len(participants) > maxParticipants {
		participants = participants[:maxParticipants]
	}

	lines := make([]string, len(participants))
	for i, name := range participants {
		lines[i] = fmt.Sprintf(participantLine, name)
	}

	return fmt.Sprintf(analyzeChunkPrompt, chunk.Text(), strings.Join(lines, "\n"))
}

// chunkParticipants 提取分块中出现的非系统消息发送者，按字典序排序
func chunkParticipants(chunk model.Chunk) []string {
	seen := make(map[string]bool)
	var names []string
	for i := range chunk.Messages {
		m := &chunk.Messages[i]
		if m.IsSystem || m.Sender == "" || seen[m.Sender] {
			continue
		}
		seen[m.Sender] = true
		names = append(names, m.Sender)
	}
	// 保持稳定顺序
	sort.Strings(names)
	return names
}
