package transcribe

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/parleyhq/parley/internal/core"
)

// Audio payloads arrive in several wire shapes depending on the client:
// a plain array of byte values, a base64 string, or a Node-Buffer-style
// object {"type":"Buffer","data":[...]}. DecodeAudioPayload normalizes all
// of them into one byte buffer; anything else is rejected explicitly.
func DecodeAudioPayload(raw json.RawMessage) ([]byte, error) {
	i := 0
	for i < len(raw) && (raw[i] == ' ' || raw[i] == '\t' || raw[i] == '\n' || raw[i] == '\r') {
		i++
	}
	if i == len(raw) {
		return nil, fmt.Errorf("%w: empty payload", core.ErrMalformedPayload)
	}

	switch raw[i] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrMalformedPayload, err)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			if b, err = base64.RawStdEncoding.DecodeString(s); err != nil {
				return nil, fmt.Errorf("%w: bad base64: %v", core.ErrMalformedPayload, err)
			}
		}
		return b, nil
	case '[':
		return decodeByteArray(raw)
	case '{':
		var buf struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &buf); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrMalformedPayload, err)
		}
		if buf.Type != "Buffer" || buf.Data == nil {
			return nil, fmt.Errorf("%w: unknown object shape", core.ErrMalformedPayload)
		}
		return decodeByteArray(buf.Data)
	default:
		return nil, fmt.Errorf("%w: unknown payload shape", core.ErrMalformedPayload)
	}
}

func decodeByteArray(raw json.RawMessage) ([]byte, error) {
	var vals []int
	if err := json.Unmarshal(raw, &vals); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedPayload, err)
	}
	out := make([]byte, len(vals))
	for i, v := range vals {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("%w: byte value out of range at %d", core.ErrMalformedPayload, i)
		}
		out[i] = byte(v)
	}
	return out, nil
}
