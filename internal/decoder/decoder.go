package decoder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind 输入文件的声明格式
type Kind string

const (
	KindText  Kind = "text"
	KindPDF   Kind = "pdf"
	KindDocx  Kind = "docx"
	KindImage Kind = "image"
)

// ErrUnsupportedFormat 声明的格式无法识别
var ErrUnsupportedFormat = errors.New("不支持的文件格式")

// DecodeError 解码引擎报告的硬错误（文件损坏、图片不可读等）
type DecodeError struct {
	Kind Kind
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("解码 %s 输入失败: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decoder 从单一格式的原始字节中提取文本
// 解码是无状态的只读操作，不产生任何副作用
type Decoder interface {
	Decode(ctx context.Context, data []byte) (string, error)
}

// Registry 按 Kind 路由到对应的解码器
type Registry struct {
	decoders map[Kind]Decoder
}

func NewRegistry() *Registry {
	return &Registry{decoders: make(map[Kind]Decoder)}
}

// Register 注册某一格式的解码器，重复注册时覆盖
func (r *Registry) Register(kind Kind, d Decoder) {
	r.decoders[kind] = d
}

// Decode 将原始字节按声明的格式解码为文本
// 未注册的格式返回 ErrUnsupportedFormat
func (r *Registry) Decode(ctx context.Context, data []byte, kind Kind) (string, error) {
	d, ok := r.decoders[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind)
	}
	return d.Decode(ctx, data)
}

var extensionKinds = map[string]Kind{
	".txt":  KindText,
	".pdf":  KindPDF,
	".docx": KindDocx,
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".webp": KindImage,
	".bmp":  KindImage,
	".tiff": KindImage,
}

// KindForFilename 根据文件扩展名推断格式
func KindForFilename(name string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	kind, ok := extensionKinds[ext]
	return kind, ok
}
