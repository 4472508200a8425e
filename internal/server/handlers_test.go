package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/fachebot/chat-insight/internal/config"
	"github.com/fachebot/chat-insight/internal/decoder"
	"github.com/fachebot/chat-insight/internal/model"
	"github.com/fachebot/chat-insight/internal/parser"
	"github.com/fachebot/chat-insight/internal/svc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleChat = "12/01/2024, 09:00 - Alice: hello\n12/01/2024, 09:01 - Bob: hi Alice"

// stubStatus 固定的模型可用状态
type stubStatus bool

func (s stubStatus) Available() bool { return bool(s) }

// stubAnalyzer 脚本化的分析器，记录收到的转写
type stubAnalyzer struct {
	mu     sync.Mutex
	got    *model.Transcript
	result *model.AnalysisResult
	err    error
}

func (a *stubAnalyzer) Analyze(ctx context.Context, t *model.Transcript) (*model.AnalysisResult, error) {
	a.mu.Lock()
	a.got = t
	a.mu.Unlock()

	if a.err != nil {
		return nil, a.err
	}
	if a.result != nil {
		return a.result, nil
	}
	return &model.AnalysisResult{
		Topics:               []string{},
		ActionItems:          []string{},
		ParticipantSummaries: map[string]string{},
	}, nil
}

func (a *stubAnalyzer) received() *model.Transcript {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.got
}

func newTestHandler(a svc.TranscriptAnalyzer, available bool) http.Handler {
	registry := decoder.NewRegistry()
	registry.Register(decoder.KindText, decoder.NewTextDecoder())

	svcCtx := &svc.ServiceContext{
		Config: &config.Config{
			Server: config.Server{
				MaxUploadBytes: 1 << 20,
				AllowedOrigins: []string{"http://localhost:5173"},
			},
			LLM: config.LLM{Model: "llama3.1:8b"},
		},
		Decoders: registry,
		Parser:   parser.New(),
		Analyzer: a,
		Health:   stubStatus(available),
	}
	return NewServer(svcCtx).Handler()
}

func postForm(handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func postFile(t *testing.T, handler http.Handler, path, filename, kind string, data []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	if kind != "" {
		require.NoError(t, w.WriteField("kind", kind))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	handler := newTestHandler(&stubAnalyzer{}, true)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "llama3.1:8b", body["model"])
	assert.Equal(t, true, body["model_available"])
}

func TestHandleParseText(t *testing.T) {
	handler := newTestHandler(&stubAnalyzer{}, true)

	rec := postForm(handler, "/api/parse/text", url.Values{"text": {sampleChat}})
	require.Equal(t, http.StatusOK, rec.Code)

	var transcript model.Transcript
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &transcript))
	assert.Equal(t, 2, transcript.MessageCount)
	assert.Equal(t, []string{"Alice", "Bob"}, transcript.Participants)
}

func TestHandleParseFile(t *testing.T) {
	handler := newTestHandler(&stubAnalyzer{}, true)

	rec := postFile(t, handler, "/api/parse/file", "chat.txt", "", []byte(sampleChat))
	require.Equal(t, http.StatusOK, rec.Code)

	var transcript model.Transcript
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &transcript))
	assert.Equal(t, 2, transcript.MessageCount)
}

func TestHandleParseFile_UnknownExtension(t *testing.T) {
	handler := newTestHandler(&stubAnalyzer{}, true)

	rec := postFile(t, handler, "/api/parse/file", "chat.xlsx", "", []byte("data"))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestHandleParseFile_UnregisteredKind(t *testing.T) {
	// 注册表里只有 text，声明 pdf 的上传返回 415
	handler := newTestHandler(&stubAnalyzer{}, true)

	rec := postFile(t, handler, "/api/parse/file", "chat.pdf", "pdf", []byte("%PDF-"))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestHandleParseFile_MissingFile(t *testing.T) {
	handler := newTestHandler(&stubAnalyzer{}, true)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("kind", "text"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/parse/file", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyzeText(t *testing.T) {
	analyzer := &stubAnalyzer{result: &model.AnalysisResult{
		Summary:              "the recap",
		Topics:               []string{"greetings"},
		ActionItems:          []string{},
		ParticipantSummaries: map[string]string{"Alice": "Said hello."},
	}}
	handler := newTestHandler(analyzer, true)

	rec := postForm(handler, "/api/analyze/text", url.Values{"text": {sampleChat}})
	require.Equal(t, http.StatusOK, rec.Code)

	var rep model.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "the recap", rep.Summary)
	assert.Equal(t, []string{"greetings"}, rep.Topics)
	assert.Equal(t, 2, rep.MessageCount)
	assert.Equal(t, 2, rep.ParticipantCount)
	assert.Equal(t, "2024-01-12 to 2024-01-12", rep.DateRange)
	assert.False(t, rep.Partial)
}

func TestHandleAnalyzeText_ParticipantFilter(t *testing.T) {
	analyzer := &stubAnalyzer{}
	handler := newTestHandler(analyzer, true)

	rec := postForm(handler, "/api/analyze/text", url.Values{
		"text":        {sampleChat},
		"participant": {"Alice"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	got := analyzer.received()
	require.NotNil(t, got)
	require.Equal(t, 1, got.MessageCount)
	assert.Equal(t, "Alice", got.Messages[0].Sender)
}

func TestHandleAnalyzeText_ModelUnavailable(t *testing.T) {
	handler := newTestHandler(&stubAnalyzer{}, false)

	rec := postForm(handler, "/api/analyze/text", url.Values{"text": {sampleChat}})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleAnalyzeText_EmptySkipsModelGate(t *testing.T) {
	// 过滤后为空的请求不检查模型可用性，直接返回空报告
	analyzer := &stubAnalyzer{}
	handler := newTestHandler(analyzer, false)

	rec := postForm(handler, "/api/analyze/text", url.Values{"text": {""}})
	require.Equal(t, http.StatusOK, rec.Code)

	var rep model.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, 0, rep.MessageCount)
	assert.Empty(t, rep.DateRange)
}

func TestHandleAnalyzeText_InvalidStartDate(t *testing.T) {
	handler := newTestHandler(&stubAnalyzer{}, true)

	rec := postForm(handler, "/api/analyze/text", url.Values{
		"text":       {sampleChat},
		"start_date": {"not-a-date"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyzeText_DateOnlyEndIsInclusive(t *testing.T) {
	// 纯日期的 end_date 覆盖当日全天
	analyzer := &stubAnalyzer{}
	handler := newTestHandler(analyzer, true)

	rec := postForm(handler, "/api/analyze/text", url.Values{
		"text":     {sampleChat},
		"end_date": {"2024-01-12"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	got := analyzer.received()
	require.NotNil(t, got)
	assert.Equal(t, 2, got.MessageCount)
}

func TestHandleAnalyzeText_AnalyzerError(t *testing.T) {
	analyzer := &stubAnalyzer{err: errors.New("全部分块分析失败")}
	handler := newTestHandler(analyzer, true)

	rec := postForm(handler, "/api/analyze/text", url.Values{"text": {sampleChat}})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestHandler(&stubAnalyzer{}, true)

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze/text", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	handler := newTestHandler(&stubAnalyzer{}, true)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
