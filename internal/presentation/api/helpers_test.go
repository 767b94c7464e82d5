package api

import (
	"encoding/json"
	"io"
)

type errorEnvelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
