package console

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
)

// JSONHandler implements the IOHandler interface for structured
// JSON-Lines communication: no prompt, one envelope in and one response
// out per line. System messages become {"system": ...} lines so the
// output stream stays machine-parseable.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO. Nil reader or writer
// fall back to Stdin/Stdout.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) ReadEnvelope(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if text == "" && err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// WriteResponse emits the envelope as-is: the processor already speaks
// compact JSON.
func (h *JSONHandler) WriteResponse(ctx context.Context, resp []byte) error {
	if _, err := h.Writer.Write(resp); err != nil {
		return err
	}
	_, err := h.Writer.Write([]byte("\n"))
	return err
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(map[string]string{"system": msg})
}
