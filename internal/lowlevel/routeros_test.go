package lowlevel

import (
	"bytes"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h44z/wg-portal-routeros/internal/domain"
)

func TestEncodeBasicAuth(t *testing.T) {
	tests := []struct {
		username string
		password string
	}{
		{"admin", "secret"},
		{"", ""},
		{"user:with:colons", "p@ss"},
		{"jürgen", "pässwörd€"},
	}

	for _, tt := range tests {
		token := EncodeBasicAuth(tt.username, tt.password)
		assert.Equal(t, token, EncodeBasicAuth(tt.username, tt.password), "must be deterministic")
		require.True(t, strings.HasPrefix(token, "Basic "))

		decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(token, "Basic "))
		require.NoError(t, err)
		assert.Equal(t, tt.username+":"+tt.password, string(decoded))
	}
}

// captureLogs routes the default logger into a JSON buffer for the duration of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })

	return &buf
}

func TestEncodeBasicAuth_LogsUsernameOnly(t *testing.T) {
	logs := captureLogs(t)

	token := EncodeBasicAuth("admin", "hunter2-secret")

	assert.Contains(t, logs.String(), `"username":"admin"`)
	assert.NotContains(t, logs.String(), "hunter2-secret")
	assert.NotContains(t, logs.String(), strings.TrimPrefix(token, "Basic "))
}

func TestEncodeBasicAuth_MatchesNetHttp(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://router", nil)
	req.SetBasicAuth("admin", "secret")
	assert.Equal(t, req.Header.Get("Authorization"), EncodeBasicAuth("admin", "secret"))
}

func TestGenericJsonObject_Getters(t *testing.T) {
	obj := GenericJsonObject{
		"str":     "value",
		"num":     float64(51820),
		"numstr":  "1420",
		"bool":    true,
		"boolstr": "true",
		"False":   "False",
		"nil":     nil,
	}

	assert.Equal(t, "value", obj.GetString("str"))
	assert.Equal(t, "51820", obj.GetString("num"))
	assert.Equal(t, "", obj.GetString("nil"))
	assert.Equal(t, "", obj.GetString("missing"))
	assert.Equal(t, 51820, obj.GetInt("num"))
	assert.Equal(t, 1420, obj.GetInt("numstr"))
	assert.Equal(t, 0, obj.GetInt("str"))
	assert.True(t, obj.GetBool("bool"))
	assert.True(t, obj.GetBool("boolstr"))
	assert.False(t, obj.GetBool("False"))
	assert.False(t, obj.GetBool("missing"))
	assert.Equal(t, "true", obj.GetBoolOrString("boolstr").Raw())
	assert.False(t, obj.GetBoolOrString("missing").IsSet())

	rest := obj.Without("str", "num", "numstr", "bool", "boolstr", "nil")
	assert.Equal(t, map[string]any{"False": "False"}, rest)
	assert.Nil(t, GenericJsonObject{"a": 1}.Without("a"))
}

func TestRequestOptions_GetPath(t *testing.T) {
	var opts *RequestOptions
	assert.Equal(t, "http://r/rest/interface", opts.GetPath("http://r/rest/interface"))

	opts = &RequestOptions{
		Filters:  map[string]string{"interface": "wg0"},
		PropList: []string{".id", "name"},
	}
	assert.Equal(t, "http://r/rest/interface?.proplist=.id%2Cname&interface=wg0",
		opts.GetPath("http://r/rest/interface"))
}

func TestRequestBuilder_Build(t *testing.T) {
	b := NewRequestBuilder(domain.RouterConfig{
		Address:  "192.168.88.1",
		Port:     "8080",
		Username: "admin",
		Password: "secret",
	}, "/rest", "test-agent/1.0")

	get, err := b.Build(http.MethodGet, "/interface/wireguard", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.88.1:8080/rest/interface/wireguard", get.Url)
	assert.Equal(t, http.MethodGet, get.Method)
	assert.Equal(t, EncodeBasicAuth("admin", "secret"), get.Headers["Authorization"])
	assert.Equal(t, "*/*", get.Headers["Accept"])
	assert.Equal(t, "test-agent/1.0", get.Headers["User-Agent"])
	assert.NotContains(t, get.Headers, "Content-Type")
	assert.Nil(t, get.Body)

	del, err := b.Build(http.MethodDelete, "/interface/wireguard/*1", nil, nil)
	require.NoError(t, err)
	assert.NotContains(t, del.Headers, "Content-Type")

	put, err := b.Build(http.MethodPut, "/interface/wireguard/peers", nil, GenericJsonObject{"name": "p1"})
	require.NoError(t, err)
	assert.Equal(t, "application/json", put.Headers["Content-Type"])
	assert.JSONEq(t, `{"name":"p1"}`, string(put.Body))
}

func TestNewResponseBody(t *testing.T) {
	body, err := NewResponseBody("application/json; charset=utf-8", []byte(` [{"a":1}] `))
	require.NoError(t, err)
	assert.True(t, body.IsJson())
	assert.Equal(t, `[{"a":1}]`, body.String())

	body, err = NewResponseBody("application/problem+json", []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.True(t, body.IsJson())

	body, err = NewResponseBody("text/plain", []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.False(t, body.IsJson())
	assert.Equal(t, `{"a":1}`, body.Text)

	body, err = NewResponseBody("application/json", nil)
	require.NoError(t, err)
	assert.True(t, body.IsEmpty())

	_, err = NewResponseBody("application/json", []byte(`{broken`))
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, domain.OutcomeParseError, te.Kind)

	body, err = decodeResponseBody(500, "application/json", []byte(`<html>oops</html>`))
	require.NoError(t, err)
	assert.Equal(t, "<html>oops</html>", body.Text)
}

func TestResponseEnvelope_Records(t *testing.T) {
	list := &ResponseEnvelope{Status: 200, Body: ResponseBody{Json: []byte(`[{".id":"*1"},{".id":"*2"}]`)}}
	records, err := list.Records()
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, "*2", records[1].GetString(".id"))

	single := &ResponseEnvelope{Status: 201, Body: ResponseBody{Json: []byte(`{".id":"*9"}`)}}
	records, err = single.Records()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "*9", records[0].GetString(".id"))

	empty := &ResponseEnvelope{Status: 204}
	records, err = empty.Records()
	require.NoError(t, err)
	assert.Empty(t, records)

	text := &ResponseEnvelope{Status: 200, Body: ResponseBody{Text: "hello"}}
	_, err = text.Records()
	assert.Error(t, err)
}

func TestResponseEnvelope_ApiError(t *testing.T) {
	resp := &ResponseEnvelope{
		Status: 400,
		Body:   ResponseBody{Json: []byte(`{"error":400,"message":"Bad Request","detail":"no such item"}`)},
	}
	apiErr := resp.ApiError()
	require.NotNil(t, apiErr)
	assert.Equal(t, 400, apiErr.Code)
	assert.Equal(t, "no such item", apiErr.Detail)

	assert.Nil(t, (&ResponseEnvelope{Status: 200, Body: resp.Body}).ApiError())
	assert.Nil(t, (&ResponseEnvelope{Status: 500, Body: ResponseBody{Text: "x"}}).ApiError())
}

func TestTransportSelector_Select(t *testing.T) {
	relay := NewRelayClient(RelayOptions{Endpoint: "http://relay"})
	direct := NewDirectClient(DirectOptions{})
	s := NewTransportSelector(relay, direct)

	assert.Equal(t, domain.TransportRelay, s.Select(true).Type())
	assert.Equal(t, domain.TransportDirect, s.Select(false).Type())
}
