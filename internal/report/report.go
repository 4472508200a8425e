package report

import (
	"fmt"

	"github.com/fachebot/chat-insight/internal/model"
)

// Assemble 将分析结果与转写元数据组装为展示层消费的报告
// 派生字段（参与者数、日期区间字符串）在此计算；participant_summaries 的键序
// 由 encoding/json 对 map 键的字典序排序保证，同样的输入始终渲染同样的形状。
func Assemble(result *model.AnalysisResult, t *model.Transcript) *model.Report {
	r := &model.Report{
		Summary:              result.Summary,
		Topics:               result.Topics,
		ActionItems:          result.ActionItems,
		ParticipantSummaries: result.ParticipantSummaries,
		MessageCount:         t.MessageCount,
		ParticipantCount:     len(t.Participants),
		Partial:              result.Partial,
	}

	if r.Topics == nil {
		r.Topics = []string{}
	}
	if r.ActionItems == nil {
		r.ActionItems = []string{}
	}
	if r.ParticipantSummaries == nil {
		r.ParticipantSummaries = map[string]string{}
	}

	if t.StartDate != nil && t.EndDate != nil {
		r.DateRange = fmt.Sprintf("%s to %s",
			t.StartDate.Format("2006-01-02"), t.EndDate.Format("2006-01-02"))
	}

	return r
}
