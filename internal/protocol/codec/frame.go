package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/kaat-color/internal/protocol"
)

// Format 帧格式，按客户端发来的帧类型决定
type Format int

const (
	FormatJSON     Format = iota // WebSocket 文本帧
	FormatProtobuf               // WebSocket 二进制帧，structpb.Struct 信封
)

func (f Format) String() string {
	if f == FormatProtobuf {
		return "protobuf"
	}
	return "json"
}

const (
	fieldType    = "type"
	fieldPayload = "payload"
)

var errMissingType = errors.New("message type missing")

// Encode 将消息编码为指定格式的字节
func Encode(m *protocol.Message, format Format) ([]byte, error) {
	if format == FormatProtobuf {
		return encodeProto(m)
	}

	buf := GetBuffer()
	defer PutBuffer(buf)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	// 去掉 Encoder 追加的换行，并复制出缓冲区
	data := buf.Bytes()
	return append([]byte(nil), data[:len(data)-1]...), nil
}

// Decode 从指定格式的字节解码消息
// 使用完毕后可调用 PutMessage 归还。
func Decode(data []byte, format Format) (*protocol.Message, error) {
	if format == FormatProtobuf {
		return decodeProto(data)
	}

	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, err
	}
	if msg.Type == "" {
		PutMessage(msg)
		return nil, errMissingType
	}
	return msg, nil
}

func encodeProto(m *protocol.Message) ([]byte, error) {
	s := GetStruct()
	defer PutStruct(s)

	s.Fields = map[string]*structpb.Value{
		fieldType: structpb.NewStringValue(string(m.Type)),
	}
	if len(m.Payload) > 0 {
		var payload any
		if err := json.Unmarshal(m.Payload, &payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		v, err := structpb.NewValue(payload)
		if err != nil {
			return nil, fmt.Errorf("convert payload: %w", err)
		}
		s.Fields[fieldPayload] = v
	}
	return proto.Marshal(s)
}

func decodeProto(data []byte) (*protocol.Message, error) {
	s := GetStruct()
	defer PutStruct(s)

	if err := proto.Unmarshal(data, s); err != nil {
		return nil, err
	}

	msgType := s.GetFields()[fieldType].GetStringValue()
	if msgType == "" {
		return nil, errMissingType
	}

	msg := GetMessage()
	msg.Type = protocol.MessageType(msgType)
	if v, ok := s.GetFields()[fieldPayload]; ok {
		payload, err := json.Marshal(v.AsInterface())
		if err != nil {
			PutMessage(msg)
			return nil, err
		}
		msg.Payload = payload
	}
	return msg, nil
}
