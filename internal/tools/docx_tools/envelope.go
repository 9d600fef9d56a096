package docx_tools

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/larkdocs/internal/lark"
)

const (
	msgUserTokenMissing   = "当前未配置 userAccessToken"
	msgImportCheckContent = "导入文档失败，请检查markdown文件内容"
	msgImportRetryLater   = "导入文档失败，请稍后再试"
)

type messageBody struct {
	Msg string `json:"msg"`
}

// successResult wraps a platform payload. An empty payload becomes null.
func successResult(payload json.RawMessage) *mcp.CallToolResult {
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return mcp.NewToolResultText(string(payload))
}

// messageResult is an error result carrying {"msg": msg}.
func messageResult(msg string) *mcp.CallToolResult {
	b, _ := json.Marshal(messageBody{Msg: msg})
	return mcp.NewToolResultError(string(b))
}

// errorResult is an error result for a failed call: the platform's error
// body for an *lark.APIError, else {"msg": err.Error()}.
func errorResult(err error) *mcp.CallToolResult {
	var apiErr *lark.APIError
	if errors.As(err, &apiErr) {
		return mcp.NewToolResultError(string(apiErr.Payload()))
	}
	return messageResult(err.Error())
}
