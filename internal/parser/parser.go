package parser

import (
	"strings"

	"github.com/fachebot/chat-insight/internal/model"
)

// Parser 将解码后的原始转写文本解析为 Transcript
type Parser struct {
	classifier LineClassifier
}

// New 创建使用 WhatsApp 默认行文法的解析器
func New() *Parser {
	return NewWithClassifier(NewWhatsAppClassifier())
}

// NewWithClassifier 创建使用指定行文法的解析器
func NewWithClassifier(c LineClassifier) *Parser {
	return &Parser{classifier: c}
}

// Parse 解析原始文本
// 识别为消息起始的行开启一条新消息；未识别的行追加为上一条消息的续行（保留内部换行）；
// 首条消息之前的未识别行跳过。空输入返回零消息的 Transcript 而不是错误。
func (p *Parser) Parse(raw string) *model.Transcript {
	var messages []model.Message
	var current *model.Message

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if msg, ok := p.classifier.Classify(line); ok {
			if current != nil {
				messages = append(messages, *current)
			}
			current = &msg
			continue
		}

		if current != nil {
			current.Content += "\n" + line
		}
	}

	if current != nil {
		messages = append(messages, *current)
	}

	return model.NewTranscript(messages)
}
