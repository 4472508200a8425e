package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Message 转写记录中的单条消息
// 系统消息（入群/退群/加密提示等）没有发送者，Sender 为空且 IsSystem 为 true
type Message struct {
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender,omitempty"`
	Content   string    `json:"content"`
	IsSystem  bool      `json:"is_system"`
	IsMedia   bool      `json:"is_media"`
}

// Line 将消息序列化为一行文本，用于构造模型输入
func (m *Message) Line() string {
	ts := m.Timestamp.Format("2006-01-02 15:04")
	if m.IsSystem {
		return fmt.Sprintf("[%s] %s", ts, m.Content)
	}
	return fmt.Sprintf("[%s] %s: %s", ts, m.Sender, m.Content)
}

// Transcript 一次请求解析出的完整聊天转写，构造后不再修改
// Participants 为去重后的非系统消息发送者，按字典序排序（稳定顺序）
type Transcript struct {
	Messages     []Message  `json:"messages"`
	Participants []string   `json:"participants"`
	MessageCount int        `json:"message_count"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

// NewTranscript 根据消息列表构造 Transcript 并计算派生字段
func NewTranscript(messages []Message) *Transcript {
	if messages == nil {
		messages = []Message{}
	}

	t := &Transcript{
		Messages:     messages,
		MessageCount: len(messages),
	}

	seen := make(map[string]bool)
	for i := range messages {
		m := &messages[i]
		if m.IsSystem || m.Sender == "" {
			continue
		}
		seen[m.Sender] = true
	}
	t.Participants = make([]string, 0, len(seen))
	for name := range seen {
		t.Participants = append(t.Participants, name)
	}
	sort.Strings(t.Participants)

	if len(messages) > 0 {
		start := messages[0].Timestamp
		end := messages[len(messages)-1].Timestamp
		t.StartDate = &start
		t.EndDate = &end
	}

	return t
}

// Text 将全部消息序列化为纯文本，消息间以换行分隔
func (t *Transcript) Text() string {
	lines := make([]string, len(t.Messages))
	for i := range t.Messages {
		lines[i] = t.Messages[i].Line()
	}
	return strings.Join(lines, "\n")
}
