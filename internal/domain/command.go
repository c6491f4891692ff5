package domain

// Resolution is the structured decision produced from free-form user text.
// An empty Action means no device call should be made. Speak is always
// non-empty and is intended for audio playback as well as display.
type Resolution struct {
	Action string
	Speak  string
}

// Level classifies an outcome for display purposes.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Outcome is the result of one dispatched interaction. It is returned to
// the caller and owned by it; nothing is kept across interactions.
type Outcome struct {
	OK      bool
	Message string
	Speak   string
	Level   Level
}

// InputKind discriminates the three ways a command can arrive.
type InputKind string

const (
	InputManual InputKind = "manual"
	InputText   InputKind = "text"
	InputVoice  InputKind = "voice"
)

// Input is one user interaction. Channel/State are set for manual toggles,
// Text for typed commands, PCM (raw 16-bit mono samples) for voice.
type Input struct {
	Kind    InputKind
	Channel Channel
	State   State
	Text    string
	PCM     []byte
}

func ManualInput(ch Channel, st State) Input {
	return Input{Kind: InputManual, Channel: ch, State: st}
}

func TextInput(text string) Input {
	return Input{Kind: InputText, Text: text}
}

func VoiceInput(pcm []byte) Input {
	return Input{Kind: InputVoice, PCM: pcm}
}
