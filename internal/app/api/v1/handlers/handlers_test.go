package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h44z/wg-portal-routeros/internal/adapters/wgcontroller"
	"github.com/h44z/wg-portal-routeros/internal/app/api/core"
	"github.com/h44z/wg-portal-routeros/internal/app/api/v1/models"
	"github.com/h44z/wg-portal-routeros/internal/app/relay"
	"github.com/h44z/wg-portal-routeros/internal/app/settings"
	"github.com/h44z/wg-portal-routeros/internal/config"
	"github.com/h44z/wg-portal-routeros/internal/domain"
	"github.com/h44z/wg-portal-routeros/internal/lowlevel"
)

var success = domain.Outcome{Category: domain.OutcomeSuccess, Transport: domain.TransportRelay, Status: 200}

// fakeRouter implements all router facing services with fixed answers.
type fakeRouter struct {
	outcome    domain.Outcome
	interfaces []domain.WireguardInterface
	peers      []domain.WireguardPeer
	written    any
	connected  bool

	lastInterfaceFilter string
	lastId              string
	calls               int
}

func (f *fakeRouter) ListInterfaces(_ context.Context) ([]domain.WireguardInterface, domain.Outcome) {
	f.calls++
	return f.interfaces, f.outcome
}

func (f *fakeRouter) CreateInterface(
	_ context.Context,
	form domain.InterfaceFormData,
) (*domain.WireguardInterface, domain.Outcome) {
	f.calls++
	f.written = form
	if !f.outcome.Success() {
		return nil, f.outcome
	}
	return &domain.WireguardInterface{Id: "*9", Name: form.Name}, f.outcome
}

func (f *fakeRouter) UpdateInterface(
	_ context.Context,
	id string,
	form domain.InterfaceFormData,
) (*domain.WireguardInterface, domain.Outcome) {
	f.calls++
	f.lastId = id
	f.written = form
	return nil, f.outcome
}

func (f *fakeRouter) DeleteInterface(_ context.Context, id string) domain.Outcome {
	f.calls++
	f.lastId = id
	return f.outcome
}

func (f *fakeRouter) ListPeers(_ context.Context, interfaceName string) ([]domain.WireguardPeer, domain.Outcome) {
	f.calls++
	f.lastInterfaceFilter = interfaceName
	return f.peers, f.outcome
}

func (f *fakeRouter) CreatePeer(_ context.Context, form domain.PeerFormData) (*domain.WireguardPeer, domain.Outcome) {
	f.calls++
	f.written = form
	return &domain.WireguardPeer{Id: "*5", Name: form.Name, PublicKey: form.PublicKey}, f.outcome
}

func (f *fakeRouter) UpdatePeer(
	_ context.Context,
	id string,
	form domain.PeerFormData,
) (*domain.WireguardPeer, domain.Outcome) {
	f.calls++
	f.lastId = id
	f.written = form
	return &domain.WireguardPeer{Id: id, Name: form.Name}, f.outcome
}

func (f *fakeRouter) DeletePeer(_ context.Context, id string) domain.Outcome {
	f.calls++
	f.lastId = id
	return f.outcome
}

func (f *fakeRouter) TestConnection(_ context.Context) (bool, *wgcontroller.SystemResource, domain.Outcome) {
	f.calls++
	f.connected = f.outcome.Success()
	if !f.connected {
		return false, nil, f.outcome
	}
	return true, &wgcontroller.SystemResource{Version: "7.14", BoardName: "hAP"}, f.outcome
}

func (f *fakeRouter) ConnectionState() domain.ConnectionState {
	return domain.ConnectionState{Connected: f.connected}
}

type fakePreparer struct{}

func (fakePreparer) PreparePeer(_ context.Context, interfaceName string) (domain.PeerFormData, error) {
	return domain.PeerFormData{Interface: interfaceName, PrivateKey: "private"}, nil
}

func (fakePreparer) PrepareInterface(_ context.Context) (domain.InterfaceFormData, error) {
	return domain.InterfaceFormData{ListenPort: "51820", PrivateKey: "private"}, nil
}

type fakeConfigs struct {
	err error
}

func (f fakeConfigs) PeerConfig(_ context.Context, form domain.PeerFormData) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "[Interface]\nPrivateKey = " + form.PrivateKey + "\n", nil
}

type fakeSettings struct {
	router   domain.RouterConfig
	defaults domain.WireGuardDefaults
	err      error
}

func (f *fakeSettings) GetRouterConfig(_ context.Context) (domain.RouterConfig, error) {
	return f.router, f.err
}

func (f *fakeSettings) UpdateRouterConfig(_ context.Context, cfg domain.RouterConfig) (domain.RouterConfig, error) {
	if f.err != nil {
		return domain.RouterConfig{}, f.err
	}
	f.router = cfg
	return cfg.Redacted(), nil
}

func (f *fakeSettings) GetWireGuardDefaults(_ context.Context) (domain.WireGuardDefaults, error) {
	return f.defaults, f.err
}

func (f *fakeSettings) UpdateWireGuardDefaults(
	_ context.Context,
	defaults domain.WireGuardDefaults,
) (domain.WireGuardDefaults, error) {
	f.defaults = defaults
	return defaults, f.err
}

type fakeRelay struct {
	authErr error
	resp    *lowlevel.RelayResponse
	err     error
	got     lowlevel.RelayRequest
}

func (f *fakeRelay) Authorize(_ string) error {
	return f.authErr
}

func (f *fakeRelay) Forward(_ context.Context, req lowlevel.RelayRequest) (*lowlevel.RelayResponse, error) {
	f.got = req
	return f.resp, f.err
}

type fakeNotifications []domain.Notification

func (f fakeNotifications) List() []domain.Notification { return f }

type testApi struct {
	srv      *core.Server
	router   *fakeRouter
	settings *fakeSettings
	relay    *fakeRelay
	configs  *fakeConfigs
}

func newTestApi(t *testing.T) *testApi {
	api := &testApi{
		router:   &fakeRouter{outcome: success},
		settings: &fakeSettings{},
		relay:    &fakeRelay{},
		configs:  &fakeConfigs{},
	}
	validator := settings.NewValidator()

	srv, err := core.NewServer(&config.Config{}, NewRestApi(
		NewHealthEndpoint(),
		NewRelayEndpoint(api.relay),
		NewConnectionEndpoint(api.router),
		NewInterfaceEndpoint(api.router, fakePreparer{}, validator),
		NewPeerEndpoint(api.router, fakePreparer{}, api.configs, validator),
		NewSettingsEndpoint(api.settings),
		NewNotificationEndpoint(fakeNotifications{{Id: "n1", Level: domain.NotificationLevelInfo}}),
	))
	require.NoError(t, err)
	api.srv = srv
	return api
}

func (a *testApi) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	a.srv.ServeHTTP(w, httptest.NewRequest(method, path, reader))
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func validPeerJson(t *testing.T) string {
	keys, err := domain.NewFreshKeypair()
	require.NoError(t, err)
	return `{"Name":"laptop","Interface":"wg0","AllowedAddress":"10.8.0.2/32","PublicKey":"` +
		keys.PublicKey + `","PrivateKey":"` + keys.PrivateKey + `"}`
}

func TestHealth(t *testing.T) {
	api := newTestApi(t)

	w := api.do(t, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[models.Health](t, w).Status)
	assert.Zero(t, api.router.calls)
}

func TestInterfaceEndpoint_All(t *testing.T) {
	api := newTestApi(t)
	api.router.interfaces = []domain.WireguardInterface{{Id: "*1", Name: "wg0", ListenPort: "51820",
		PrivateKey: "secret", Extra: map[string]any{"comment": "main"}}}

	w := api.do(t, http.MethodGet, "/api/v1/interface/all", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")

	interfaces := decode[[]models.Interface](t, w)
	require.Len(t, interfaces, 1)
	assert.Equal(t, "*1", interfaces[0].Id)
	assert.Equal(t, "main", interfaces[0].Attributes["comment"])
}

func TestInterfaceEndpoint_OutcomeMapping(t *testing.T) {
	tests := []struct {
		name     string
		outcome  domain.Outcome
		wantCode int
	}{
		{"incomplete", domain.Outcome{Category: domain.OutcomeConfigIncomplete}, http.StatusPreconditionFailed},
		{"router 401", domain.Outcome{Category: domain.OutcomeHttpError, Status: 401}, http.StatusUnauthorized},
		{"router 404", domain.Outcome{Category: domain.OutcomeHttpError, Status: 404}, http.StatusNotFound},
		{"router 500", domain.Outcome{Category: domain.OutcomeHttpError, Status: 500}, http.StatusBadGateway},
		{"cors", domain.Outcome{Category: domain.OutcomeCorsBlocked}, http.StatusBadGateway},
		{"unreachable", domain.Outcome{Category: domain.OutcomeNetworkUnreachable}, http.StatusBadGateway},
		{"relay", domain.Outcome{Category: domain.OutcomeRelayFailure}, http.StatusBadGateway},
		{"parse", domain.Outcome{Category: domain.OutcomeParseError}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestApi(t)
			api.router.outcome = tt.outcome

			w := api.do(t, http.MethodGet, "/api/v1/interface/all", "")
			assert.Equal(t, tt.wantCode, w.Code)
			e := decode[models.Error](t, w)
			assert.Equal(t, string(tt.outcome.Category), e.Category)
			assert.Equal(t, tt.wantCode, e.Code)
			assert.NotEmpty(t, e.Message)
		})
	}
}

func TestInterfaceEndpoint_Create(t *testing.T) {
	api := newTestApi(t)

	w := api.do(t, http.MethodPost, "/api/v1/interface/new", `{"Name":"wg1","ListenPort":"13231"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*9", decode[models.Interface](t, w).Id)
	assert.Equal(t, "13231", api.router.written.(domain.InterfaceFormData).ListenPort)
}

func TestInterfaceEndpoint_CreateInvalid(t *testing.T) {
	api := newTestApi(t)

	w := api.do(t, http.MethodPost, "/api/v1/interface/new", `{"Name":"","ListenPort":"port"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/interface/new", `{broken`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, api.router.calls)
}

func TestInterfaceEndpoint_UpdateAndDelete(t *testing.T) {
	api := newTestApi(t)

	w := api.do(t, http.MethodPatch, "/api/v1/interface/by-id/*1", `{"Name":"wg0","Disabled":true}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*1", api.router.lastId)
	assert.True(t, api.router.written.(domain.InterfaceFormData).Disabled)

	w = api.do(t, http.MethodDelete, "/api/v1/interface/by-id/*2", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*2", api.router.lastId)
}

func TestInterfaceEndpoint_Prepare(t *testing.T) {
	api := newTestApi(t)

	w := api.do(t, http.MethodGet, "/api/v1/interface/prepare", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "51820", decode[models.InterfaceForm](t, w).ListenPort)
	assert.Zero(t, api.router.calls)
}

func TestPeerEndpoint_AllWithFilter(t *testing.T) {
	api := newTestApi(t)
	api.router.peers = []domain.WireguardPeer{{Id: "*3", Interface: "wg0", PresharedKey: "psk"}}

	w := api.do(t, http.MethodGet, "/api/v1/peer/all?interface=wg0", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "wg0", api.router.lastInterfaceFilter)
	assert.NotContains(t, w.Body.String(), "psk")

	peers := decode[[]models.Peer](t, w)
	require.Len(t, peers, 1)
	assert.True(t, peers[0].HasPresharedKey)
}

func TestPeerEndpoint_CreateUpdateDelete(t *testing.T) {
	api := newTestApi(t)
	body := validPeerJson(t)

	w := api.do(t, http.MethodPost, "/api/v1/peer/new", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*5", decode[models.Peer](t, w).Id)

	w = api.do(t, http.MethodPatch, "/api/v1/peer/by-id/*5", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*5", api.router.lastId)

	w = api.do(t, http.MethodDelete, "/api/v1/peer/by-id/*5", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/peer/new", `{"Name":"laptop","Interface":"wg0"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPeerEndpoint_Prepare(t *testing.T) {
	api := newTestApi(t)

	w := api.do(t, http.MethodGet, "/api/v1/peer/prepare?interface=wg1", "")
	require.Equal(t, http.StatusOK, w.Code)
	form := decode[models.PeerForm](t, w)
	assert.Equal(t, "wg1", form.Interface)
	assert.Equal(t, "private", form.PrivateKey)
}

func TestPeerEndpoint_Config(t *testing.T) {
	api := newTestApi(t)

	w := api.do(t, http.MethodPost, "/api/v1/peer/config", validPeerJson(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "laptop.conf")
	assert.Contains(t, w.Body.String(), "[Interface]")

	api.configs.err = domain.Outcome{Category: domain.OutcomeNetworkUnreachable, Transport: domain.TransportDirect}
	w = api.do(t, http.MethodPost, "/api/v1/peer/config", validPeerJson(t))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, string(domain.OutcomeNetworkUnreachable), decode[models.Error](t, w).Category)

	api.configs.err = errors.Join(domain.ErrInvalidData, errors.New("unknown interface"))
	w = api.do(t, http.MethodPost, "/api/v1/peer/config", validPeerJson(t))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConnectionEndpoint(t *testing.T) {
	api := newTestApi(t)

	w := api.do(t, http.MethodPost, "/api/v1/connection/test", "")
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[models.ConnectionTest](t, w)
	assert.True(t, result.IsConnected)
	assert.Equal(t, "7.14", result.Resource.Version)

	api.router.outcome = domain.Outcome{Category: domain.OutcomeCorsBlocked, Transport: domain.TransportDirect}
	w = api.do(t, http.MethodPost, "/api/v1/connection/test", "")
	require.Equal(t, http.StatusOK, w.Code)
	result = decode[models.ConnectionTest](t, w)
	assert.False(t, result.IsConnected)
	assert.Equal(t, "cors_blocked", result.Outcome.Category)
	assert.Nil(t, result.Resource)

	w = api.do(t, http.MethodGet, "/api/v1/connection", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[models.ConnectionState](t, w).IsConnected)
}

func TestSettingsEndpoint_Router(t *testing.T) {
	api := newTestApi(t)
	api.settings.router = domain.RouterConfig{Address: "192.168.88.1", Username: "admin", Password: "secret"}

	w := api.do(t, http.MethodGet, "/api/v1/settings/router", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.RouterSettings](t, w)
	assert.Equal(t, domain.RedactedPassword, got.Password)
	assert.True(t, got.Usable)
	assert.NotContains(t, w.Body.String(), "secret")

	w = api.do(t, http.MethodPut, "/api/v1/settings/router",
		`{"Address":"10.0.0.1","Username":"api","Password":"new","UseHttps":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "new", api.settings.router.Password)
	assert.NotContains(t, w.Body.String(), `"new"`)

	api.settings.err = domain.ErrInvalidData
	w = api.do(t, http.MethodPut, "/api/v1/settings/router", `{"Address":"10.0.0.1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsEndpoint_RouterNotConfigured(t *testing.T) {
	api := newTestApi(t)
	api.settings.err = domain.ErrNotFound

	w := api.do(t, http.MethodGet, "/api/v1/settings/router", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[models.RouterSettings](t, w).Usable)
}

func TestSettingsEndpoint_WireGuard(t *testing.T) {
	api := newTestApi(t)

	w := api.do(t, http.MethodPut, "/api/v1/settings/wireguard", `{"Endpoint":"vpn.example.com","Port":"51820"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "vpn.example.com", api.settings.defaults.Endpoint)

	w = api.do(t, http.MethodGet, "/api/v1/settings/wireguard", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "51820", decode[models.WireGuardDefaults](t, w).Port)
}

func TestRelayEndpoint(t *testing.T) {
	api := newTestApi(t)
	api.relay.resp = &lowlevel.RelayResponse{Status: 200, StatusText: "OK", Body: json.RawMessage(`[]`)}

	w := api.do(t, http.MethodPost, "/api/v1/relay", `{"url":"http://router/rest/interface/wireguard","method":"GET"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://router/rest/interface/wireguard", api.relay.got.Url)
	assert.JSONEq(t, `{"status":200,"statusText":"OK","headers":null,"body":[]}`, w.Body.String())
}

func TestRelayEndpoint_Failures(t *testing.T) {
	tests := []struct {
		name     string
		authErr  error
		err      error
		body     string
		wantCode int
	}{
		{"unauthorized", relay.ErrUnauthorized, nil, `{}`, http.StatusUnauthorized},
		{"malformed", nil, nil, `{broken`, http.StatusBadRequest},
		{"invalid", nil, domain.ErrInvalidData, `{"url":"ftp://x"}`, http.StatusBadRequest},
		{"forbidden", nil, relay.ErrTargetNotAllowed, `{"url":"http://x"}`, http.StatusForbidden},
		{"target down", nil, &lowlevel.TransportError{Kind: domain.OutcomeNetworkUnreachable,
			Err: errors.New("connection refused")}, `{"url":"http://x"}`, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestApi(t)
			api.relay.authErr = tt.authErr
			api.relay.err = tt.err

			w := api.do(t, http.MethodPost, "/api/v1/relay", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantCode, decode[models.Error](t, w).Code)
		})
	}
}

func TestNotificationEndpoint(t *testing.T) {
	api := newTestApi(t)

	w := api.do(t, http.MethodGet, "/api/v1/notifications", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]models.Notification](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "n1", list[0].Id)
}

func TestParseServiceError(t *testing.T) {
	code, e := ParseServiceError(nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "unknown server error", e.Message)

	code, _ = ParseServiceError(domain.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, code)

	code, e = ParseServiceError(domain.Outcome{Category: domain.OutcomeConfigIncomplete, Message: "missing address"})
	assert.Equal(t, http.StatusPreconditionFailed, code)
	assert.Equal(t, "missing address", e.Message)
}
