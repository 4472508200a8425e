package decoder

import (
	"bytes"
	"context"
	"strings"

	docxlib "github.com/fumiama/go-docx"
)

// DocxDecoder 按段落顺序提取 DOCX 中的文本，空白段落丢弃
type DocxDecoder struct{}

func NewDocxDecoder() *DocxDecoder {
	return &DocxDecoder{}
}

func (d *DocxDecoder) Decode(ctx context.Context, data []byte) (string, error) {
	doc, err := docxlib.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &DecodeError{Kind: KindDocx, Err: err}
	}

	var parts []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docxlib.Paragraph)
		if !ok {
			continue
		}
		text := para.String()
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), nil
}
