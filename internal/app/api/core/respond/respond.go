// Package respond writes HTTP responses.
package respond

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
)

// Status writes a response without body.
func Status(w http.ResponseWriter, code int) {
	w.WriteHeader(code)
}

// String writes a plain text response.
func String(w http.ResponseWriter, code int, data string) {
	w.Header().Set("Content-Type", "text/plain;charset=utf-8")
	w.WriteHeader(code)

	_, _ = w.Write([]byte(data))
}

// JSON writes data as JSON. A nil value is written as null, encoding errors are ignored.
func JSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if data == nil {
		_, _ = w.Write([]byte("null"))
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// Attachment streams data as downloadable file.
func Attachment(w http.ResponseWriter, code int, filename, contentType string, data io.Reader) {
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)

	_, _ = io.Copy(w, data)
}
