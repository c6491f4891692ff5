package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"relay-assistant/internal/application"
	"relay-assistant/internal/domain"
)

const base = "http://192.168.4.1"

type mockSTT struct {
	text  string
	err   error
	calls int
}

func (m *mockSTT) Transcribe(_ context.Context, _ []byte) (string, error) {
	m.calls++
	return m.text, m.err
}

type mockResolver struct {
	res   domain.Resolution
	calls int
	texts []string
}

func (m *mockResolver) Resolve(_ context.Context, text string) domain.Resolution {
	m.calls++
	m.texts = append(m.texts, text)
	return m.res
}

type mockGateway struct {
	ok   bool
	msg  string
	urls []string
}

func (m *mockGateway) Invoke(_ context.Context, url string) (bool, string) {
	m.urls = append(m.urls, url)
	return m.ok, m.msg
}

func newDispatcher(stt *mockSTT, res *mockResolver, gw *mockGateway) *application.Dispatcher {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return application.NewDispatcher(stt, res, gw, &application.NoopNotifier{}, base, logger)
}

func TestDispatch_Manual(t *testing.T) {
	gw := &mockGateway{ok: true, msg: "D1 is ON"}
	res := &mockResolver{}
	d := newDispatcher(&mockSTT{}, res, gw)

	out := d.Dispatch(context.Background(), domain.ManualInput(domain.ChannelD1, domain.StateOn))

	if !out.OK || out.Message != "D1 is ON" {
		t.Errorf("outcome: got (%t, %q)", out.OK, out.Message)
	}
	if len(gw.urls) != 1 || gw.urls[0] != "http://192.168.4.1/d1/on" {
		t.Errorf("gateway urls: got %v", gw.urls)
	}
	if res.calls != 0 {
		t.Error("manual toggles must not hit the resolver")
	}
}

func TestDispatch_ManualFailure(t *testing.T) {
	gw := &mockGateway{ok: false, msg: "HTTP 500"}
	d := newDispatcher(&mockSTT{}, &mockResolver{}, gw)

	out := d.Dispatch(context.Background(), domain.ManualInput(domain.ChannelD2, domain.StateOff))

	if out.OK || out.Level != domain.LevelError {
		t.Errorf("outcome: got (%t, %s)", out.OK, out.Level)
	}
	if out.Message != "HTTP 500" {
		t.Errorf("message: got %q", out.Message)
	}
}

func TestDispatch_TextWithAction(t *testing.T) {
	gw := &mockGateway{ok: true, msg: "D1 is ON"}
	res := &mockResolver{res: domain.Resolution{
		Action: "http://192.168.4.1/d1/on",
		Speak:  "D1 is now on",
	}}
	d := newDispatcher(&mockSTT{}, res, gw)

	out := d.Dispatch(context.Background(), domain.TextInput("turn on d1"))

	if out.Message != "D1 is ON" {
		t.Errorf("visible message must be the device result, got %q", out.Message)
	}
	if out.Speak != "D1 is now on" {
		t.Errorf("spoken text must be the resolver's reply, got %q", out.Speak)
	}
	if len(gw.urls) != 1 || gw.urls[0] != "http://192.168.4.1/d1/on" {
		t.Errorf("gateway urls: got %v", gw.urls)
	}
}

func TestDispatch_TextDeviceFailureSpeaksDeviceResult(t *testing.T) {
	gw := &mockGateway{ok: false, msg: "Error: connection refused"}
	res := &mockResolver{res: domain.Resolution{
		Action: "http://192.168.4.1/d1/on",
		Speak:  "",
	}}
	d := newDispatcher(&mockSTT{}, res, gw)

	out := d.Dispatch(context.Background(), domain.TextInput("turn on d1"))

	if out.OK || out.Level != domain.LevelError {
		t.Errorf("outcome: got (%t, %s)", out.OK, out.Level)
	}
	if out.Speak != "Error: connection refused" {
		t.Errorf("spoken text must fall back to the device result, got %q", out.Speak)
	}
}

func TestDispatch_TextNoAction(t *testing.T) {
	gw := &mockGateway{}
	res := &mockResolver{res: domain.Resolution{Speak: "I can only switch D1 and D2."}}
	d := newDispatcher(&mockSTT{}, res, gw)

	out := d.Dispatch(context.Background(), domain.TextInput("what's the weather"))

	if out.Level != domain.LevelWarn {
		t.Errorf("level: got %s, want warn", out.Level)
	}
	if out.Message != "I can only switch D1 and D2." || out.Speak != out.Message {
		t.Errorf("outcome: got (%q, %q)", out.Message, out.Speak)
	}
	if len(gw.urls) != 0 {
		t.Error("no-action resolutions must not invoke the gateway")
	}
}

func TestDispatch_Voice(t *testing.T) {
	gw := &mockGateway{ok: true, msg: "D2 is OFF"}
	stt := &mockSTT{text: "turn off d2"}
	res := &mockResolver{res: domain.Resolution{
		Action: "http://192.168.4.1/d2/off",
		Speak:  "D2 is now off",
	}}
	d := newDispatcher(stt, res, gw)

	out := d.Dispatch(context.Background(), domain.VoiceInput([]byte{0, 0, 1, 0}))

	if !out.OK || out.Message != "D2 is OFF" {
		t.Errorf("outcome: got (%t, %q)", out.OK, out.Message)
	}
	if len(res.texts) != 1 || res.texts[0] != "turn off d2" {
		t.Errorf("resolver texts: got %v", res.texts)
	}
}

func TestDispatch_VoiceEmptyPCMShortCircuits(t *testing.T) {
	gw := &mockGateway{}
	stt := &mockSTT{}
	res := &mockResolver{}
	d := newDispatcher(stt, res, gw)

	out := d.Dispatch(context.Background(), domain.VoiceInput(nil))

	if out.Level != domain.LevelWarn {
		t.Errorf("level: got %s, want warn", out.Level)
	}
	if stt.calls != 0 || res.calls != 0 || len(gw.urls) != 0 {
		t.Error("empty audio must not reach transcription, resolution or the device")
	}
}

func TestDispatch_VoiceEmptyTranscriptShortCircuits(t *testing.T) {
	gw := &mockGateway{}
	stt := &mockSTT{text: "   "}
	res := &mockResolver{}
	d := newDispatcher(stt, res, gw)

	out := d.Dispatch(context.Background(), domain.VoiceInput([]byte{0, 0}))

	if out.Level != domain.LevelWarn {
		t.Errorf("level: got %s, want warn", out.Level)
	}
	if res.calls != 0 || len(gw.urls) != 0 {
		t.Error("empty transcript must not reach resolution or the device")
	}
}

func TestDispatch_VoiceTranscriptionError(t *testing.T) {
	gw := &mockGateway{}
	stt := &mockSTT{err: errors.New("whisper down")}
	res := &mockResolver{}
	d := newDispatcher(stt, res, gw)

	out := d.Dispatch(context.Background(), domain.VoiceInput([]byte{0, 0}))

	if out.Level != domain.LevelError {
		t.Errorf("level: got %s, want error", out.Level)
	}
	if res.calls != 0 || len(gw.urls) != 0 {
		t.Error("failed transcription must not reach resolution or the device")
	}
}

func TestPing(t *testing.T) {
	gw := &mockGateway{ok: true, msg: "relay ready"}
	d := newDispatcher(&mockSTT{}, &mockResolver{}, gw)

	out := d.Ping(context.Background())

	if !out.OK || out.Message != "relay ready" {
		t.Errorf("outcome: got (%t, %q)", out.OK, out.Message)
	}
	if len(gw.urls) != 1 || gw.urls[0] != "http://192.168.4.1/" {
		t.Errorf("ping url: got %v", gw.urls)
	}
}
