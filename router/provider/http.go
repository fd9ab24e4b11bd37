// Package provider 外部路径与路网数据服务客户端：Mapbox Directions、OSRM、Overpass
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// 错误：服务拒绝凭据（401/403）
	ErrUnauthorized = errors.New("provider rejected credentials")
	// 错误：服务返回的结果中没有路线
	ErrNoRoute = errors.New("provider returned no route")
)

// StatusError 非200响应
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.Code, e.Body)
}

// 错误响应体最多保留的字节数
const ERROR_BODY_LIMIT = 256

// DefaultHTTPClient 超时由各阶段的context控制，这里只兜底
func DefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// doJSON 发送请求并将200响应解码到out
func doJSON(ctx context.Context, client *http.Client, name string, req *http.Request, out any) error {
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", name, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w (status %d)", name, ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, ERROR_BODY_LIMIT))
		return &StatusError{Provider: name, Code: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", name, err)
	}
	return nil
}
