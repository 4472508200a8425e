package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/fachebot/chat-insight/internal/model"
)

// LineClassifier 行文法识别器
// 转写导出格式因地区和应用版本而异，识别器按接口插拔，新增格式不影响切块与合并逻辑
type LineClassifier interface {
	// Classify 尝试把一行识别为一条新消息的起始行，无法识别时返回 false（按续行处理）
	Classify(line string) (model.Message, bool)
}

// WhatsApp 导出文本中夹杂的不可见字符（LTR/RTL 标记等）
var junkPattern = regexp.MustCompile(`[\x{200E}\x{200F}\x{202A}\x{202B}\x{202C}\x{200B}\x{200D}\x{FEFF}]`)

// 消息头格式：
// 1. [HH:MM, DD/MM/YYYY] 时间在前的方括号格式（印度/亚洲常见）
// 2. [DD/MM/YYYY, HH:MM:SS] 日期在前的方括号格式（iOS 导出）
// 3. DD/MM/YYYY, HH:MM - 带 AM/PM 的 12 小时制（美国常见）
// 4. DD/MM/YYYY, HH:MM - 24 小时制（欧洲/亚洲常见）
type headerPattern struct {
	re        *regexp.Regexp
	timeFirst bool
}

var headerPatterns = []headerPattern{
	{regexp.MustCompile(`^\[(\d{1,2}:\d{2}(?::\d{2})?(?:\s*[APap][Mm])?),\s+(\d{1,2}/\d{1,2}/\d{2,4})\]\s+`), true},
	{regexp.MustCompile(`^\[(\d{1,2}/\d{1,2}/\d{2,4}),\s+(\d{1,2}:\d{2}(?::\d{2})?(?:\s*[APap][Mm])?)\]\s+`), false},
	{regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}),\s+(\d{1,2}:\d{2}(?::\d{2})?\s*[APap][Mm]?)\s+[-–—]\s+`), false},
	{regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}),\s+(\d{1,2}:\d{2}(?::\d{2})?)\s+[-–—]\s+`), false},
}

// 按顺序尝试的时间戳布局，12 小时制布局要求已归一化的大写 AM/PM
var dateLayouts = []string{
	"2/1/2006, 15:04",
	"2/1/2006, 15:04:05",
	"1/2/2006, 3:04 PM",
	"1/2/2006, 3:04:05 PM",
	"2/1/06, 15:04",
	"2/1/06, 15:04:05",
	"1/2/06, 3:04 PM",
	"1/2/06, 3:04:05 PM",
	"2/1/2006, 3:04 PM",
	"2/1/2006, 3:04:05 PM",
}

// 系统事件关键词（小写包含匹配）
var systemIndicators = []string{
	"messages and calls are end-to-end encrypted",
	"created group",
	"added you",
	"added ",
	"removed ",
	"left",
	"changed the subject",
	"changed this group",
	"changed the group",
	"you were added",
	"security code changed",
	"joined using this group",
}

const mediaIndicator = "<media omitted>"

var senderPattern = regexp.MustCompile(`^([^:]+?):\s(.*)$`)

// WhatsAppClassifier WhatsApp 导出文本的默认行文法
type WhatsAppClassifier struct{}

func NewWhatsAppClassifier() *WhatsAppClassifier {
	return &WhatsAppClassifier{}
}

func (c *WhatsAppClassifier) Classify(line string) (model.Message, bool) {
	line = strings.TrimSpace(junkPattern.ReplaceAllString(line, ""))
	if line == "" {
		return model.Message{}, false
	}

	for _, p := range headerPatterns {
		m := p.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		dateStr, timeStr := m[1], m[2]
		if p.timeFirst {
			dateStr, timeStr = m[2], m[1]
		}

		// 时间戳解析失败按续行处理而不是丢弃，OCR 噪声只会降级不会截断转写
		ts, ok := parseTimestamp(dateStr, timeStr)
		if !ok {
			return model.Message{}, false
		}

		return buildMessage(ts, line[len(m[0]):]), true
	}

	return model.Message{}, false
}

// parseTimestamp 依次尝试所有已知布局解析时间戳
func parseTimestamp(dateStr, timeStr string) (time.Time, bool) {
	combined := dateStr + ", " + normalizeTime(timeStr)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, combined); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// normalizeTime 统一 AM/PM 的大小写和前导空格，适配 time.Parse 的布局要求
func normalizeTime(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if suffix, ok := strings.CutSuffix(s, "AM"); ok {
		return strings.TrimSpace(suffix) + " AM"
	}
	if suffix, ok := strings.CutSuffix(s, "PM"); ok {
		return strings.TrimSpace(suffix) + " PM"
	}
	return s
}

func buildMessage(ts time.Time, rest string) model.Message {
	rest = strings.TrimSpace(rest)

	if m := senderPattern.FindStringSubmatch(rest); m != nil {
		sender := strings.TrimSpace(m[1])
		content := strings.TrimSpace(m[2])
		if !isSystemContent(content) {
			return model.Message{
				Timestamp: ts,
				Sender:    sender,
				Content:   content,
				IsMedia:   strings.Contains(strings.ToLower(content), mediaIndicator),
			}
		}
	}

	// 没有冒号分隔的发送者，或命中系统事件关键词：系统消息，无发送者
	return model.Message{
		Timestamp: ts,
		Content:   rest,
		IsSystem:  true,
	}
}

func isSystemContent(content string) bool {
	lower := strings.ToLower(content)
	for _, indicator := range systemIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
