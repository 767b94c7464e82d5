package json

import (
	"encoding/json"
	"net/http"
)

// Write marshals data and sends it with the given status. Only marshalling
// failures are returned: once the header is out, a failed write means the
// client went away and there is nothing left to report to it.
func Write(w http.ResponseWriter, status int, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)

	return nil
}
