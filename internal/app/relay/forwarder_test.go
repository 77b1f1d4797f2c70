package relay

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h44z/wg-portal-routeros/internal/config"
	"github.com/h44z/wg-portal-routeros/internal/domain"
	"github.com/h44z/wg-portal-routeros/internal/lowlevel"
)

type staticSettings struct {
	cfg domain.RouterConfig
	err error
}

func (s staticSettings) GetRouterConfig(_ context.Context) (domain.RouterConfig, error) {
	return s.cfg, s.err
}

func newForwarder(t *testing.T, handler http.HandlerFunc, restrict bool) (*Forwarder, string) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	host, port, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Core.RelayRestrictTarget = restrict
	settings := staticSettings{cfg: domain.RouterConfig{Address: host, Port: port, Username: "u", Password: "p"}}

	return NewForwarder(cfg, settings, lowlevel.NewDirectClient(lowlevel.DirectOptions{VerifyTls: true})), srv.URL
}

func TestForwarder_Forward_Json(t *testing.T) {
	var gotAuth, gotBody string
	f, baseUrl := newForwarder(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{".id":"*2"}`))
	}, true)

	body := `{"name":"wg1"}`
	resp, err := f.Forward(t.Context(), lowlevel.RelayRequest{
		Url:     baseUrl + "/rest/interface/wireguard",
		Method:  "put",
		Headers: map[string]string{"Authorization": "Basic abc"},
		Body:    &body,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "Created", resp.StatusText)
	assert.JSONEq(t, `{".id":"*2"}`, string(resp.Body))
	assert.Equal(t, lowlevel.RelayBodyJson, resp.BodyEncoding)
	assert.Equal(t, "application/json", resp.Headers["content-type"])
	assert.Equal(t, "Basic abc", gotAuth)
	assert.Equal(t, body, gotBody)
}

func TestForwarder_Forward_TextAndErrors(t *testing.T) {
	f, baseUrl := newForwarder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("unauthorized"))
	}, true)

	resp, err := f.Forward(t.Context(), lowlevel.RelayRequest{Url: baseUrl + "/rest/system/resource"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	var text string
	require.NoError(t, json.Unmarshal(resp.Body, &text))
	assert.Equal(t, "unauthorized", text)
	assert.Equal(t, lowlevel.RelayBodyText, resp.BodyEncoding)
}

func TestForwarder_Forward_JsonStringDocument(t *testing.T) {
	f, baseUrl := newForwarder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`"ok"`))
	}, true)

	resp, err := f.Forward(t.Context(), lowlevel.RelayRequest{Url: baseUrl + "/rest/system/script/run"})
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, string(resp.Body))
	assert.Equal(t, lowlevel.RelayBodyJson, resp.BodyEncoding)
}

func TestForwarder_Forward_InvalidJsonIsForwardedAsText(t *testing.T) {
	f, baseUrl := newForwarder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{broken"))
	}, true)

	resp, err := f.Forward(t.Context(), lowlevel.RelayRequest{Url: baseUrl + "/rest/interface/wireguard"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, `"{broken"`, string(resp.Body))
	assert.Equal(t, lowlevel.RelayBodyText, resp.BodyEncoding)
}

func TestForwarder_Forward_InvalidRequests(t *testing.T) {
	f, baseUrl := newForwarder(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("target must not be called")
	}, true)

	tests := []struct {
		name string
		req  lowlevel.RelayRequest
		want error
	}{
		{"bad method", lowlevel.RelayRequest{Url: baseUrl, Method: "TRACE"}, domain.ErrInvalidData},
		{"no host", lowlevel.RelayRequest{Url: "/rest"}, domain.ErrInvalidData},
		{"bad scheme", lowlevel.RelayRequest{Url: "ftp://router/rest"}, domain.ErrInvalidData},
		{"foreign host", lowlevel.RelayRequest{Url: "http://198.51.100.1/rest"}, ErrTargetNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Forward(t.Context(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestForwarder_Forward_Unrestricted(t *testing.T) {
	f, _ := newForwarder(t, func(w http.ResponseWriter, r *http.Request) {}, false)

	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer other.Close()

	resp, err := f.Forward(t.Context(), lowlevel.RelayRequest{Url: other.URL + "/rest"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Equal(t, "null", string(resp.Body))
}

func TestForwarder_Forward_TargetUnreachable(t *testing.T) {
	f, _ := newForwarder(t, func(w http.ResponseWriter, r *http.Request) {}, false)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	closedUrl := srv.URL
	srv.Close()

	_, err := f.Forward(t.Context(), lowlevel.RelayRequest{Url: closedUrl + "/rest"})
	require.Error(t, err)
	var transportErr *lowlevel.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, domain.OutcomeNetworkUnreachable, transportErr.Kind)
}

func TestForwarder_Authorize(t *testing.T) {
	f := NewForwarder(&config.Config{}, staticSettings{}, nil)
	assert.NoError(t, f.Authorize(""))

	f.cfg.Core.RelayToken = "s3cret"
	assert.NoError(t, f.Authorize("Bearer s3cret"))
	assert.ErrorIs(t, f.Authorize("Bearer wrong"), ErrUnauthorized)
	assert.ErrorIs(t, f.Authorize("s3cret"), ErrUnauthorized)
	assert.ErrorIs(t, f.Authorize(""), ErrUnauthorized)
}

func TestCanonicalHost(t *testing.T) {
	mustParse := func(raw string) *url.URL {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		return u
	}
	assert.Equal(t, "router:443", canonicalHost(mustParse("https://router/rest")))
	assert.Equal(t, "router:80", canonicalHost(mustParse("http://Router")))
	assert.Equal(t, "fd00::1:8080", canonicalHost(mustParse("http://[fd00::1]:8080")))
}
