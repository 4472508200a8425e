package decoder

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/fachebot/chat-insight/internal/logger"
	"github.com/ledongthuc/pdf"
)

// PDFDecoder 按文档顺序提取 PDF 中的文本，不递归识别内嵌图片
type PDFDecoder struct{}

func NewPDFDecoder() *PDFDecoder {
	return &PDFDecoder{}
}

func (d *PDFDecoder) Decode(ctx context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &DecodeError{Kind: KindPDF, Err: err}
	}

	var parts []string
	failed := 0
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", &DecodeError{Kind: KindPDF, Err: err}
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// 单页提取失败不中断，尽力提取其余页面
			logger.Warnf("[Decoder] PDF 第 %d 页提取失败: %v", i, err)
			failed++
			continue
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 && failed > 0 {
		return "", &DecodeError{Kind: KindPDF, Err: fmt.Errorf("全部 %d 页提取失败", failed)}
	}
	return strings.Join(parts, "\n"), nil
}
