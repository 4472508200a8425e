package decoder

import (
	"context"
	"strings"

	"github.com/fachebot/chat-insight/internal/logger"
	"github.com/otiai10/gosseract/v2"
)

// VisionExtractor 使用视觉模型从聊天截图中提取文本
type VisionExtractor interface {
	ExtractImageText(ctx context.Context, image []byte) (string, error)
}

// ocrEngine 本地 OCR 引擎（便于测试注入 mock）
type ocrEngine interface {
	Recognize(image []byte) (string, error)
}

// tesseractOCR 基于 tesseract 的 OCR 引擎
type tesseractOCR struct {
	languages []string
}

func (t *tesseractOCR) Recognize(image []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if len(t.languages) > 0 {
		if err := client.SetLanguage(t.languages...); err != nil {
			return "", err
		}
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return "", err
	}
	return client.Text()
}

// ImageDecoder 从聊天截图中提取文本
// 配置了视觉模型时优先使用视觉模型，失败或输出为空时回退本地 OCR
// OCR 输出不做置信度过滤：乱码由下游解析按未匹配行容忍
type ImageDecoder struct {
	vision VisionExtractor
	ocr    ocrEngine
}

func NewImageDecoder(vision VisionExtractor, languages []string) *ImageDecoder {
	return &ImageDecoder{
		vision: vision,
		ocr:    &tesseractOCR{languages: languages},
	}
}

func (d *ImageDecoder) Decode(ctx context.Context, data []byte) (string, error) {
	if d.vision != nil {
		text, err := d.vision.ExtractImageText(ctx, data)
		if err == nil && strings.TrimSpace(text) != "" {
			logger.Debugf("[Decoder] 视觉模型提取成功，共 %d 字符", len(text))
			return text, nil
		}
		if err != nil {
			logger.Infof("[Decoder] 视觉模型提取失败，回退 OCR: %v", err)
		}
	}

	text, err := d.ocr.Recognize(data)
	if err != nil {
		return "", &DecodeError{Kind: KindImage, Err: err}
	}
	return text, nil
}
