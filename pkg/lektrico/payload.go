package lektrico

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// payload is one RPC response body keyed by field name. Values stay raw until
// the merged result is decoded into a wire struct.
type payload map[string]json.RawMessage

func decodeObject(raw json.RawMessage) (payload, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, protocolErrorf(err, "response is not a json object")
	}
	if p == nil {
		return nil, protocolErrorf(nil, "response is null")
	}
	return p, nil
}

// mergePayloads combines payloads in order; on a key collision the later
// payload wins. The inputs are not modified.
func mergePayloads(ps ...payload) payload {
	n := 0
	for _, p := range ps {
		n += len(p)
	}
	out := make(payload, n)
	for _, p := range ps {
		for k, v := range p {
			out[k] = v
		}
	}
	return out
}

// without returns a copy of p lacking keys.
func (p payload) without(keys ...string) payload {
	out := mergePayloads(p)
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// has reports whether key is present with a non-null value.
func (p payload) has(key string) bool {
	v, ok := p[key]
	return ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// require fails with a ProtocolError naming the first absent key.
func (p payload) require(keys ...string) error {
	for _, k := range keys {
		if !p.has(k) {
			return protocolErrorf(nil, "missing field %q", k)
		}
	}
	return nil
}

// boolField decodes a single boolean field.
func (p payload) boolField(key string) (bool, error) {
	if err := p.require(key); err != nil {
		return false, err
	}
	var b bool
	if err := json.Unmarshal(p[key], &b); err != nil {
		return false, protocolErrorf(err, "field %q is not a boolean", key)
	}
	return b, nil
}

// decode re-encodes p and unmarshals it into dst.
func (p payload) decode(dst any) error {
	b, err := json.Marshal(p)
	if err != nil {
		return protocolErrorf(err, "failed to encode merged response")
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return protocolErrorf(err, "failed to decode merged response")
	}
	return nil
}

// compatRule fills a canonical field that older firmware does not send. If
// field is absent it is copied from the legacy key from; if that is absent too
// it gets def. A nil def leaves the field missing.
type compatRule struct {
	field string
	from  string
	def   json.RawMessage
}

// applyCompat runs every rule once over p and returns the result. Fields that
// are already present are never touched, so applying the rules again is a
// no-op.
func applyCompat(p payload, rules []compatRule) payload {
	out := mergePayloads(p)
	for _, r := range rules {
		if out.has(r.field) {
			continue
		}
		if r.from != "" && out.has(r.from) {
			out[r.field] = out[r.from]
			continue
		}
		if r.def != nil {
			out[r.field] = r.def
		}
	}
	return out
}

// phases splits a per-phase array into L1, L2, L3.
func phases(field string, v []float64) ([3]float64, error) {
	if len(v) != 3 {
		return [3]float64{}, protocolErrorf(nil, "field %q has %d phases, expected 3", field, len(v))
	}
	return [3]float64{v[0], v[1], v[2]}, nil
}

func boolJSON(b bool) json.RawMessage {
	return json.RawMessage(fmt.Sprint(b))
}
