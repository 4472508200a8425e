package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fachebot/chat-insight/internal/decoder"
	"github.com/fachebot/chat-insight/internal/filter"
	"github.com/fachebot/chat-insight/internal/logger"
	"github.com/fachebot/chat-insight/internal/model"
	"github.com/fachebot/chat-insight/internal/report"
	"github.com/google/uuid"
)

// handleHealth 健康检查：服务自身状态和模型可用性
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"model":           s.svcCtx.Config.LLM.Model,
		"model_available": s.svcCtx.Health.Available(),
	})
}

// handleParseText 解析粘贴的转写文本，不调用模型
func (s *Server) handleParseText(w http.ResponseWriter, r *http.Request) {
	text, ok := s.formText(w, r)
	if !ok {
		return
	}

	transcript, ok := s.parsePipeline(w, text)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, transcript)
}

// handleParseFile 解析上传的转写文件，不调用模型
func (s *Server) handleParseFile(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.decodeUpload(w, r)
	if !ok {
		return
	}

	transcript, ok := s.parsePipeline(w, raw)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, transcript)
}

// handleAnalyzeText 对粘贴的转写文本执行完整分析
func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	text, ok := s.formText(w, r)
	if !ok {
		return
	}
	s.analyze(w, r, text)
}

// handleAnalyzeFile 对上传的转写文件执行完整分析
func (s *Server) handleAnalyzeFile(w http.ResponseWriter, r *http.Request) {
	raw, ok := s.decodeUpload(w, r)
	if !ok {
		return
	}
	s.analyze(w, r, raw)
}

// analyze 解析、过滤、分析并组装报告
func (s *Server) analyze(w http.ResponseWriter, r *http.Request, raw string) {
	transcript, ok := s.parsePipeline(w, raw)
	if !ok {
		return
	}

	opts, err := parseFilters(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	filtered := filter.Apply(transcript, opts)

	// 空转写（或过滤后为空）直接返回空报告，不触碰模型
	if filtered.MessageCount > 0 && !s.svcCtx.Health.Available() {
		respondError(w, http.StatusServiceUnavailable, "模型服务不可用，请稍后重试")
		return
	}

	requestID := uuid.NewString()
	logger.Infof("[Server] 分析请求 %s: %d 条消息, %d 个参与者",
		requestID, filtered.MessageCount, len(filtered.Participants))

	result, err := s.svcCtx.Analyzer.Analyze(r.Context(), filtered)
	if err != nil {
		logger.Errorf("[Server] 分析请求 %s 失败: %v", requestID, err)
		respondError(w, http.StatusServiceUnavailable, "模型服务不可用，请稍后重试")
		return
	}

	rep := report.Assemble(result, filtered)
	if rep.Partial {
		logger.Warnf("[Server] 分析请求 %s 返回部分结果", requestID)
	}
	respondJSON(w, http.StatusOK, rep)
}

// parsePipeline 执行解析阶段，解析器未装配属于管线装配缺陷，对该请求致命
func (s *Server) parsePipeline(w http.ResponseWriter, raw string) (*model.Transcript, bool) {
	if s.svcCtx.Parser == nil {
		respondError(w, http.StatusInternalServerError, "解析管线未初始化")
		return nil, false
	}
	return s.svcCtx.Parser.Parse(raw), true
}

// formText 读取表单中的 text 字段，带请求体大小限制
func (s *Server) formText(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.svcCtx.Config.Server.MaxUploadBytes)
	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "请求体无效或超出大小限制")
		return "", false
	}
	return r.FormValue("text"), true
}

// decodeUpload 读取 multipart 上传的文件并按声明的格式解码为文本
// 格式优先取表单 kind 字段，缺省时根据文件扩展名推断
func (s *Server) decodeUpload(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.svcCtx.Config.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		respondError(w, http.StatusBadRequest, "上传内容无效或超出大小限制")
		return "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "缺少 file 字段")
		return "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "读取上传文件失败")
		return "", false
	}

	kind := decoder.Kind(r.FormValue("kind"))
	if kind == "" {
		inferred, ok := decoder.KindForFilename(header.Filename)
		if !ok {
			respondError(w, http.StatusUnsupportedMediaType,
				fmt.Sprintf("无法识别的文件类型: %s", header.Filename))
			return "", false
		}
		kind = inferred
	}

	raw, err := s.svcCtx.Decoders.Decode(r.Context(), data, kind)
	if err != nil {
		var decodeErr *decoder.DecodeError
		switch {
		case errors.Is(err, decoder.ErrUnsupportedFormat):
			respondError(w, http.StatusUnsupportedMediaType,
				fmt.Sprintf("不支持的文件格式: %s", kind))
		case errors.As(err, &decodeErr):
			respondError(w, http.StatusBadRequest,
				fmt.Sprintf("文件解码失败 (%s)，文件可能已损坏", decodeErr.Kind))
		default:
			respondError(w, http.StatusInternalServerError, "文件解码失败")
		}
		return "", false
	}
	return raw, true
}

// parseFilters 从表单读取过滤参数
func parseFilters(r *http.Request) (filter.Options, error) {
	opts := filter.Options{Participant: r.FormValue("participant")}

	if v := r.FormValue("start_date"); v != "" {
		t, _, err := parseDateParam(v)
		if err != nil {
			return opts, fmt.Errorf("start_date 格式无效: %s", v)
		}
		opts.Start = &t
	}
	if v := r.FormValue("end_date"); v != "" {
		t, dateOnly, err := parseDateParam(v)
		if err != nil {
			return opts, fmt.Errorf("end_date 格式无效: %s", v)
		}
		if dateOnly {
			// 纯日期的结束边界扩展到当日最后一刻，保证区间按自然语义闭合
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		opts.End = &t
	}
	return opts, nil
}

var dateParamLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseDateParam 解析日期参数，返回值第二项表示输入是否为纯日期
func parseDateParam(v string) (time.Time, bool, error) {
	for _, layout := range dateParamLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, false, nil
		}
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("无法解析的日期: %s", v)
}
