package protocol

import (
	"errors"
	"testing"
)

func TestParseClientMessageUserText(t *testing.T) {
	raw := []byte(`{"type":"user_text","conversation_id":"c1","text":"What's the weather in Marburg?","ts_ms":123}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}

	text, ok := msg.(UserText)
	if !ok {
		t.Fatalf("message type = %T, want UserText", msg)
	}
	if text.ConversationID != "c1" || text.Text != "What's the weather in Marburg?" {
		t.Fatalf("unexpected user text: %+v", text)
	}
	if text.TSMs != 123 {
		t.Fatalf("TSMs = %d, want %d", text.TSMs, 123)
	}
}

func TestParseClientMessageControl(t *testing.T) {
	raw := []byte(`{"type":"client_control","conversation_id":"c1","action":"clear_context"}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}

	control, ok := msg.(ClientControl)
	if !ok {
		t.Fatalf("message type = %T, want ClientControl", msg)
	}
	if control.ConversationID != "c1" || control.Action != "clear_context" {
		t.Fatalf("unexpected client control: %+v", control)
	}
}

func TestParseClientMessageRejectsUnknownType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"wat"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseClientMessageRejectsBlankText(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"user_text","conversation_id":"c1","text":"   "}`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func BenchmarkParseClientMessageUserText(b *testing.B) {
	raw := []byte(`{"type":"user_text","conversation_id":"c1","text":"Will it rain there on Saturday?","ts_ms":123456}`)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		msg, err := ParseClientMessage(raw)
		if err != nil {
			b.Fatalf("ParseClientMessage() error = %v", err)
		}
		if _, ok := msg.(UserText); !ok {
			b.Fatalf("message type = %T, want UserText", msg)
		}
	}
}
