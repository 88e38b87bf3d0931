package respond

import (
	"errors"
	"log"
	"net/http"

	"github.com/zhouzirui/moodi/backend/internal/model/chat"
	"github.com/zhouzirui/moodi/backend/internal/service/provider"
	"github.com/zhouzirui/moodi/backend/internal/service/speech"
	"github.com/zhouzirui/moodi/backend/pkg/utils"
)

// InternalErrorMessage 是所有未知错误对外暴露的提示
const InternalErrorMessage = "Internal server error."

// ErrInvalidInput 标记请求体不合法
var ErrInvalidInput = errors.New("invalid input")

// Messages 描述某个接口对外返回的通用错误文案
type Messages struct {
	Invalid  string
	Upstream string
}

// Error 把业务错误映射为 HTTP 状态码。上游返回的错误内容只写日志，不返回给调用方。
func Error(w http.ResponseWriter, tag string, err error, msgs Messages) {
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, chat.ErrInvalidConversation) || errors.Is(err, speech.ErrEmptyText) {
		utils.RespondError(w, http.StatusBadRequest, msgs.Invalid)
		return
	}

	if status, ok := provider.StatusCode(err); ok {
		log.Printf("[%s] upstream error: %v", tag, err)
		utils.RespondError(w, status, msgs.Upstream)
		return
	}

	log.Printf("[%s] internal error: %v", tag, err)
	utils.RespondError(w, http.StatusInternalServerError, InternalErrorMessage)
}

// Unavailable 用于服务未配置（缺少密钥）的情况
func Unavailable(w http.ResponseWriter, service string) {
	utils.RespondError(w, http.StatusServiceUnavailable, service+" is not configured.")
}
