package transport

import "encoding/json"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every gateway response and the CLI's --json output.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// SourceMeta tells the caller where the data came from; Degraded is set for
// anything not served by the backend.
type SourceMeta struct {
	Source   string `json:"source"`
	Degraded bool   `json:"degraded"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{Status: StatusSuccess, Data: data, Meta: meta}
}

func NewError(code string, message string, meta interface{}) Envelope {
	return Envelope{Status: StatusError, Code: code, Error: message, Meta: meta}
}

// NewSourced returns a success envelope tagged with its data source.
func NewSourced(data interface{}, source string, degraded bool) Envelope {
	return NewSuccess(data, SourceMeta{Source: source, Degraded: degraded})
}

// Bytes encodes the envelope; values that cannot be encoded degrade to a
// bare internal error.
func (e Envelope) Bytes() []byte {
	out, err := json.Marshal(e)
	if err != nil {
		return []byte(`{"status":"error","code":"INTERNAL","error":"response encoding failed"}`)
	}
	return out
}
