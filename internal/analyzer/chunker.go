package analyzer

import (
	"github.com/fachebot/chat-insight/internal/model"
)

// splitIntoChunks 将消息序列切分为连续、不重叠的分块
// 每块序列化后不超过 maxChars 字符且不超过 maxMessages 条消息，先触顶的上限生效；
// 只在消息边界切分，单条超长消息独占一块；按块序拼接所有分块可精确还原输入序列。
func splitIntoChunks(messages []model.Message, maxChars, maxMessages int) []model.Chunk {
	if len(messages) == 0 {
		return nil
	}

	var chunks []model.Chunk
	var current []model.Message
	currentChars := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, model.Chunk{Index: len(chunks), Messages: current})
			current = nil
			currentChars = 0
		}
	}

	for _, m := range messages {
		size := len(m.Line())
		if len(current) > 0 && (currentChars+size > maxChars || len(current) >= maxMessages) {
			flush()
		}
		current = append(current, m)
		currentChars += size + 1 // 换行符
	}
	flush()

	return chunks
}
