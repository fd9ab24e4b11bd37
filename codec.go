package main

import "encoding/json"

// jsonCodec 服务消息是普通Go结构体，以JSON编解码（Content-Type: application/json）
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
