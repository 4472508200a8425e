package analyzer

import (
	"strings"
)

// participantNote 分块响应中单个参与者的小结，保留模型输出顺序
type participantNote struct {
	Name string
	Note string
}

// chunkAnalysis 单个分块的解析后结果
type chunkAnalysis struct {
	index        int
	summary      string
	topics       []string
	actionItems  []string
	participants []participantNote
}

// parseChunkResponse 解析模型按约定格式返回的分块分析
// 按 SUMMARY / TOPICS / ACTION ITEMS / PARTICIPANTS 小节切分，无法归类的行忽略
func parseChunkResponse(raw string) *chunkAnalysis {
	sections := map[string]*strings.Builder{
		"summary":      {},
		"topics":       {},
		"action items": {},
		"participants": {},
	}

	var current *strings.Builder
	for _, line := range strings.Split(raw, "\n") {
		key := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(line), ":"))
		if b, ok := sections[key]; ok {
			current = b
			continue
		}
		if current != nil {
			current.WriteString(line)
			current.WriteString("\n")
		}
	}

	ca := &chunkAnalysis{
		summary:     strings.TrimSpace(sections["summary"].String()),
		topics:      parseBulletList(sections["topics"].String()),
		actionItems: parseBulletList(sections["action items"].String()),
	}

	// 参与者小结的格式为 "- Name: note"
	for _, line := range strings.Split(sections["participants"].String(), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		name, note, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		note = strings.TrimSpace(note)
		if name == "" || note == "" {
			continue
		}
		ca.participants = append(ca.participants, participantNote{Name: name, Note: note})
	}

	return ca
}

// parseBulletList 将模型输出的列表文本解析为字符串切片
// 接受 "- "、"* " 以及 "1." / "1)" 形式的编号前缀，其余行忽略
func parseBulletList(raw string) []string {
	var items []string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		stripped, ok := stripListPrefix(line)
		if !ok {
			continue
		}
		stripped = strings.TrimSpace(stripped)
		if stripped != "" {
			items = append(items, stripped)
		}
	}
	return items
}

func stripListPrefix(line string) (string, bool) {
	if rest, ok := strings.CutPrefix(line, "- "); ok {
		return rest, true
	}
	if rest, ok := strings.CutPrefix(line, "* "); ok {
		return rest, true
	}
	// 编号列表：一到两位数字后跟 "." 或 ")"
	for _, width := range []int{1, 2} {
		if len(line) <= width {
			continue
		}
		if !isDigits(line[:width]) {
			continue
		}
		if line[width] == '.' || line[width] == ')' {
			return line[width+1:], true
		}
	}
	return "", false
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
