package transport

import (
	"encoding/json"
	"testing"
)

func TestDecodeClientEnvelope_SitDown(t *testing.T) {
	raw := []byte(`{"type":"sit_down","sitDown":{"buyIn":1000,"nickname":"alice"}}`)
	env, err := DecodeClientEnvelope(raw)
	if err != nil {
		t.Fatalf("DecodeClientEnvelope err: %v", err)
	}
	if env.Type != ClientSitDown {
		t.Fatalf("expected type %q, got %q", ClientSitDown, env.Type)
	}
	if env.SitDown == nil || env.SitDown.BuyIn != 1000 || env.SitDown.Nickname != "alice" {
		t.Fatalf("unexpected sitDown payload: %+v", env.SitDown)
	}
	if env.SitDown.Chair != nil {
		t.Fatalf("expected no preferred chair, got %v", *env.SitDown.Chair)
	}
}

func TestDecodeClientEnvelope_SitDownWithChair(t *testing.T) {
	raw := []byte(`{"type":"sit_down","sitDown":{"chair":2,"buyIn":500}}`)
	env, err := DecodeClientEnvelope(raw)
	if err != nil {
		t.Fatalf("DecodeClientEnvelope err: %v", err)
	}
	if env.SitDown == nil || env.SitDown.Chair == nil || *env.SitDown.Chair != 2 {
		t.Fatalf("expected chair pointer to 2, got %+v", env.SitDown)
	}
}

func TestDecodeClientEnvelope_InvalidJSON(t *testing.T) {
	if _, err := DecodeClientEnvelope([]byte("not json")); err == nil {
		t.Fatalf("expected an error decoding malformed JSON")
	}
}

func TestEncode_ServerEnvelopeOmitsUnsetPayloads(t *testing.T) {
	env := ServerEnvelope{Type: ServerError, TableID: "t1", ServerSeq: 1, TsMs: 123, Error: &ErrorPayload{Code: 2, Message: "boom"}}
	data, err := Encode(env)
	if err != nil {
		t.Fatalf("Encode err: %v", err)
	}
	var back ServerEnvelope
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("round trip decode err: %v", err)
	}
	if back.Type != ServerError || back.Error == nil || back.Error.Message != "boom" {
		t.Fatalf("unexpected round-tripped envelope: %+v", back)
	}
	if back.GameState != nil || back.TableJoined != nil || back.Showdown != nil {
		t.Fatalf("expected unset payload fields to stay nil, got %+v", back)
	}
}
