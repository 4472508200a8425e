package filter

import (
	"time"

	"github.com/fachebot/chat-insight/internal/model"
)

// Options 可选过滤条件，零值字段表示该维度不过滤
type Options struct {
	Participant string
	Start       *time.Time
	End         *time.Time
}

// IsZero 是否未设置任何过滤条件
func (o Options) IsZero() bool {
	return o.Participant == "" && o.Start == nil && o.End == nil
}

// Apply 对转写应用参与者和日期区间过滤，返回重新计算派生字段的新 Transcript
// 输入不会被修改。日期区间为闭区间 [Start, End]。
// 参与者匹配为区分大小写的精确比较；参与者过滤会丢弃系统消息（系统消息没有发送者可匹配）。
// 不设置任何条件时等价于恒等变换。
func Apply(t *model.Transcript, opts Options) *model.Transcript {
	filtered := make([]model.Message, 0, len(t.Messages))
	for _, m := range t.Messages {
		if opts.Start != nil && m.Timestamp.Before(*opts.Start) {
			continue
		}
		if opts.End != nil && m.Timestamp.After(*opts.End) {
			continue
		}
		if opts.Participant != "" && (m.IsSystem || m.Sender != opts.Participant) {
			continue
		}
		filtered = append(filtered, m)
	}
	return model.NewTranscript(filtered)
}
