package server

import (
	"encoding/json"
	"net/http"

	"github.com/fachebot/chat-insight/internal/logger"
)

// respondJSON 输出 JSON 响应
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Errorf("[Server] 写入响应失败: %v", err)
	}
}

// respondError 输出错误响应，只携带简短的可读原因，不暴露内部细节
func respondError(w http.ResponseWriter, status int, reason string) {
	respondJSON(w, status, map[string]string{"error": reason})
}
