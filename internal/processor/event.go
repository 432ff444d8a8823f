package processor

// Event types written to the client, one JSON object per line.
const (
	TypeProgress    = "progress"
	TypeStreamStart = "stream_start"
	TypeStreamChunk = "stream_chunk"
	TypeStreamEnd   = "stream_end"
	TypeComplete    = "complete"
	TypeError       = "error"
)

// Progress stages.
const (
	StageAnalyzing  = "analyzing"
	StageProcessing = "processing"
)

const StatusCompleted = "completed"

// Event is one frame of the response stream. Only the fields of its Type
// are set.
type Event struct {
	Type      string `json:"type"`
	Stage     string `json:"stage,omitempty"`
	Message   string `json:"message,omitempty"`
	Content   string `json:"content,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Source    string `json:"source,omitempty"`
	VideoID   string `json:"videoId,omitempty"`
	Status    string `json:"status,omitempty"`
	Language  string `json:"language,omitempty"`
	SummaryID string `json:"summaryId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Terminal reports whether ev ends the stream.
func (ev Event) Terminal() bool {
	return ev.Type == TypeComplete || ev.Type == TypeError
}

func progressEvent(stage, msg string) Event {
	return Event{Type: TypeProgress, Stage: stage, Message: msg}
}

func errorEvent(err error) Event {
	return Event{Type: TypeError, Error: err.Error()}
}
