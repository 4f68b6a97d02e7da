package clusterserver

import (
	"fmt"

	"github.com/hashicorp/go-msgpack/v2/codec"
)

// CodecName is the Connect codec name, sent as application/msgpack.
const CodecName = "msgpack"

var msgpackHandle = func() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true
	h.RawToString = true
	return h
}()

// msgpackCodec implements connect.Codec.
type msgpackCodec struct{}

func (msgpackCodec) Name() string { return CodecName }

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	return encode(v)
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	return decode(data, v)
}

func encode(v any) ([]byte, error) {
	var buf []byte
	if err := codec.NewEncoderBytes(&buf, msgpackHandle).Encode(v); err != nil {
		return nil, fmt.Errorf("msgpack encode %T: %w", v, err)
	}
	return buf, nil
}

func decode(data []byte, v any) error {
	if err := codec.NewDecoderBytes(data, msgpackHandle).Decode(v); err != nil {
		return fmt.Errorf("msgpack decode %T: %w", v, err)
	}
	return nil
}
