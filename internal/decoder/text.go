package decoder

import (
	"bytes"
	"context"
	"encoding/binary"
	"unicode/utf16"
	"unicode/utf8"
)

// TextDecoder 纯文本透传，处理 BOM 和 UTF-16 编码的导出文件
type TextDecoder struct{}

func NewTextDecoder() *TextDecoder {
	return &TextDecoder{}
}

func (d *TextDecoder) Decode(ctx context.Context, data []byte) (string, error) {
	// UTF-16 带 BOM（部分 WhatsApp 导出和 Windows 记事本保存的文件）
	if len(data) >= 2 {
		if data[0] == 0xFF && data[1] == 0xFE {
			return decodeUTF16(data[2:], binary.LittleEndian), nil
		}
		if data[0] == 0xFE && data[1] == 0xFF {
			return decodeUTF16(data[2:], binary.BigEndian), nil
		}
	}

	// UTF-8 BOM
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	if utf8.Valid(data) {
		return string(data), nil
	}

	// 非法字节替换为 U+FFFD，保证下游解析拿到合法的 UTF-8
	return string(bytes.ToValidUTF8(data, []byte("�"))), nil
}

func decodeUTF16(data []byte, order binary.ByteOrder) string {
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, order.Uint16(data[i:]))
	}
	return string(utf16.Decode(units))
}
