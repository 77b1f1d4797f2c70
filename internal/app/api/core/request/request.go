// Package request extracts parameters from HTTP requests.
package request

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/h44z/wg-portal-routeros/internal"
)

// maxBodySize limits JSON request bodies.
const maxBodySize = 1 << 20

// Path returns the trimmed value of the named path parameter.
func Path(r *http.Request, name string) string {
	return strings.TrimSpace(r.PathValue(name))
}

// Query returns the trimmed value of the named query parameter.
func Query(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}

// QueryDefault is Query, but returns defaultValue if the parameter is empty.
func QueryDefault(r *http.Request, name, defaultValue string) string {
	if value := Query(r, name); value != "" {
		return value
	}
	return defaultValue
}

// Header returns the trimmed value of the named header.
func Header(r *http.Request, name string) string {
	return strings.TrimSpace(r.Header.Get(name))
}

// BodyJson decodes the JSON body into target. Unknown fields are accepted, trailing data is not.
func BodyJson(r *http.Request, target any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return fmt.Errorf("request body is empty")
	}
	defer internal.LogClose(r.Body)

	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	if err := decoder.Decode(target); err != nil {
		return err
	}
	if decoder.More() {
		return fmt.Errorf("request body contains more than one JSON value")
	}
	return nil
}
