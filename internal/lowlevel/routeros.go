package lowlevel

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/h44z/wg-portal-routeros/internal/domain"
)

const logPrefix = "[RT-API] "

// EncodeBasicAuth builds the value of the Authorization header for the given credentials.
// The credentials are encoded as UTF-8 bytes, so every input pair is accepted.
func EncodeBasicAuth(username, password string) string {
	slog.Debug(logPrefix+"encoding router credentials", "username", username)

	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// GenericJsonObject is a single record as sent by the RouterOS REST API, keys are hyphenated.
type GenericJsonObject map[string]any

func (JsonObject GenericJsonObject) GetString(key string) string {
	if value, ok := JsonObject[key]; ok {
		switch v := value.(type) {
		case nil:
			return ""
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return fmt.Sprintf("%v", value) // Convert to string if not already
		}
	}
	return ""
}

func (JsonObject GenericJsonObject) GetInt(key string) int {
	if value, ok := JsonObject[key]; ok {
		switch v := value.(type) {
		case int:
			return v
		case float64:
			return int(v)
		case string:
			if intValue, err := strconv.Atoi(v); err == nil {
				return intValue
			}
		}
	}
	return 0
}

// GetBool follows the router semantics: only true and "true" are true.
func (JsonObject GenericJsonObject) GetBool(key string) bool {
	return domain.NormalizeBoolean(JsonObject[key])
}

// GetBoolOrString keeps the original representation of a boolean field.
func (JsonObject GenericJsonObject) GetBoolOrString(key string) domain.BoolOrString {
	return domain.BoolOrStringFrom(JsonObject[key])
}

// Without returns all entries except the given keys.
func (JsonObject GenericJsonObject) Without(keys ...string) map[string]any {
	skip := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		skip[k] = struct{}{}
	}

	rest := make(map[string]any)
	for k, v := range JsonObject {
		if _, ok := skip[k]; ok {
			continue
		}
		rest[k] = v
	}
	if len(rest) == 0 {
		return nil
	}
	return rest
}

// RequestOptions are optional query modifiers of the RouterOS REST API.
type RequestOptions struct {
	Filters  map[string]string `json:"filters,omitempty"`
	PropList []string          `json:"proplist,omitempty"`
}

func (o *RequestOptions) GetPath(base string) string {
	if o == nil {
		return base
	}

	path, err := url.Parse(base)
	if err != nil {
		return base
	}

	query := path.Query()
	for k, v := range o.Filters {
		query.Set(k, v)
	}
	if len(o.PropList) > 0 {
		query.Set(".proplist", strings.Join(o.PropList, ","))
	}
	path.RawQuery = query.Encode()
	return path.String()
}

// RequestEnvelope describes a single HTTP request independent of the transport that carries it.
type RequestEnvelope struct {
	Url     string
	Method  string
	Headers map[string]string
	Body    []byte // nil if the request has no body
}

// RequestBuilder creates envelopes for one router configuration.
type RequestBuilder struct {
	baseUrl   string
	userAgent string
	authToken string
}

func NewRequestBuilder(cfg domain.RouterConfig, basePath, userAgent string) *RequestBuilder {
	return &RequestBuilder{
		baseUrl:   cfg.BaseUrl(basePath),
		userAgent: userAgent,
		authToken: EncodeBasicAuth(cfg.Username, cfg.Password),
	}
}

// Build returns the envelope for the given command. If body is not nil, it is JSON encoded.
func (b *RequestBuilder) Build(method, command string, opts *RequestOptions, body any) (RequestEnvelope, error) {
	fullUrl, err := url.JoinPath(b.baseUrl, command)
	if err != nil {
		return RequestEnvelope{}, fmt.Errorf("invalid router url: %w", err)
	}

	req := RequestEnvelope{
		Url:    opts.GetPath(fullUrl),
		Method: method,
		Headers: map[string]string{
			"Authorization": b.authToken,
			"Accept":        "*/*",
			"User-Agent":    b.userAgent,
		},
	}

	if method != http.MethodGet && method != http.MethodDelete {
		req.Headers["Content-Type"] = "application/json"
	}

	if body != nil {
		req.Body, err = json.Marshal(body)
		if err != nil {
			return RequestEnvelope{}, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	return req, nil
}

// ResponseBody is either JSON or plain text, depending on the declared content type.
type ResponseBody struct {
	Json json.RawMessage
	Text string
}

// NewResponseBody decodes data according to contentType. A JSON content type with
// an undecodable payload results in a ParseError.
func NewResponseBody(contentType string, data []byte) (ResponseBody, error) {
	if !isJsonContentType(contentType) {
		return ResponseBody{Text: string(data)}, nil
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return ResponseBody{}, nil
	}
	if !json.Valid([]byte(trimmed)) {
		return ResponseBody{Text: string(data)}, &TransportError{
			Kind: domain.OutcomeParseError,
			Err:  fmt.Errorf("response declared %q but body is not valid JSON", contentType),
		}
	}
	return ResponseBody{Json: json.RawMessage(trimmed)}, nil
}

// decodeResponseBody is NewResponseBody, but bodies of error responses never fail to decode;
// an unusable error body must not hide the status.
func decodeResponseBody(status int, contentType string, data []byte) (ResponseBody, error) {
	body, err := NewResponseBody(contentType, data)
	if err != nil && (status < 200 || status >= 300) {
		return ResponseBody{Text: string(data)}, nil
	}
	return body, err
}

func (b ResponseBody) IsJson() bool {
	return len(b.Json) > 0
}

func (b ResponseBody) IsEmpty() bool {
	return len(b.Json) == 0 && b.Text == ""
}

func (b ResponseBody) String() string {
	if b.IsJson() {
		return string(b.Json)
	}
	return b.Text
}

func (b ResponseBody) MarshalJSON() ([]byte, error) {
	if b.IsJson() {
		return b.Json, nil
	}
	if b.Text == "" {
		return []byte("null"), nil
	}
	return json.Marshal(b.Text)
}

func isJsonContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// ResponseEnvelope is the transport independent response. It is created per call and never cached.
type ResponseEnvelope struct {
	Status     int
	StatusText string
	Headers    map[string]string // lower-case keys
	Body       ResponseBody
}

func (r *ResponseEnvelope) Ok() bool {
	return r.Status >= 200 && r.Status < 300
}

func (r *ResponseEnvelope) ContentType() string {
	return r.Headers["content-type"]
}

// Decode unmarshals the JSON body into target.
func (r *ResponseEnvelope) Decode(target any) error {
	if !r.Body.IsJson() {
		return &TransportError{Kind: domain.OutcomeParseError, Err: fmt.Errorf("response body is not JSON")}
	}
	if err := json.Unmarshal(r.Body.Json, target); err != nil {
		return &TransportError{Kind: domain.OutcomeParseError, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// Records returns the body as list of wire records. A single object is returned as list of one.
// An empty body results in an empty list.
func (r *ResponseEnvelope) Records() ([]GenericJsonObject, error) {
	if r.Body.IsEmpty() {
		return []GenericJsonObject{}, nil
	}

	var records []GenericJsonObject
	if err := r.Decode(&records); err == nil {
		return records, nil
	}

	record, err := r.Record()
	if err != nil {
		return nil, err
	}
	return []GenericJsonObject{record}, nil
}

// Record returns the body as single wire record.
func (r *ResponseEnvelope) Record() (GenericJsonObject, error) {
	var record GenericJsonObject
	if err := r.Decode(&record); err != nil {
		return nil, err
	}
	return record, nil
}

// ApiError returns the error sent by the router, if the body contains one.
func (r *ResponseEnvelope) ApiError() *ApiError {
	if r.Ok() || !r.Body.IsJson() {
		return nil
	}
	var apiErr ApiError
	if err := json.Unmarshal(r.Body.Json, &apiErr); err != nil || (apiErr.Message == "" && apiErr.Detail == "") {
		return nil
	}
	return &apiErr
}

// ApiError is the error object of the RouterOS REST API.
type ApiError struct {
	Code    int    `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

func (e ApiError) String() string {
	return fmt.Sprintf("API error %d: %s - %s", e.Code, e.Message, e.Detail)
}

func statusTextFromResponse(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func flattenHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for k, v := range h {
		headers[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	return headers
}
