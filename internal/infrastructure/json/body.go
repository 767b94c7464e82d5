package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

var (
	ErrBodyTooLarge  = errors.New("request entity too large")
	ErrMalformedBody = errors.New("malformed JSON body")
)

// IsJSONContentType reports whether a Content-Type header declares JSON.
func IsJSONContentType(header string) bool {
	if header == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}

	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// ReadBody consumes at most limit bytes of r's body and decodes them.
// Only objects and arrays are accepted at the top level. The raw bytes are
// put back on r.Body so later readers see the original payload. An empty
// body decodes to nil.
func ReadBody(r *http.Request, limit int64) (any, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	_ = r.Body.Close()

	if int64(len(raw)) > limit {
		return nil, ErrBodyTooLarge
	}

	r.Body = io.NopCloser(bytes.NewReader(raw))

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: top-level value must be an object or array", ErrMalformedBody)
	}

	var body any
	if err := json.Unmarshal(trimmed, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	return body, nil
}
