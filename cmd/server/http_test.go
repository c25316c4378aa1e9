package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-risk-engine/internal/actions"
	"solana-risk-engine/internal/domain"
	"solana-risk-engine/internal/storage"
	"solana-risk-engine/internal/storage/memory"
)

type stubEngine struct {
	mu    sync.Mutex
	calls []string
	// results maps action to the JSON result; errs maps action to an error.
	results map[string]string
	errs    map[string]error
}

func (e *stubEngine) Invoke(_ context.Context, action string, params json.RawMessage) (string, error) {
	e.mu.Lock()
	e.calls = append(e.calls, action+" "+string(params))
	e.mu.Unlock()
	if err, ok := e.errs[action]; ok {
		return "", &actions.ActionError{Action: action, Prefix: action + " failed", Err: err}
	}
	return e.results[action], nil
}

func (e *stubEngine) Status(context.Context) actions.StatusReport {
	return actions.StatusReport{Uptime: "1m0s", Slot: 42, CacheAges: map[string]float64{"news": 12}}
}

func (e *stubEngine) Actions() []string { return []string{"news", "risk_analysis"} }

func newTestServer(t *testing.T, engine *stubEngine) *httptest.Server {
	t.Helper()
	return newTestServerWithStore(t, engine, nil)
}

func newTestServerWithStore(t *testing.T, engine *stubEngine, store storage.InvocationStore) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(engine, store, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubEngine{})

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatus(t *testing.T) {
	srv := newTestServer(t, &stubEngine{})

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(42), body["slot"])
	assert.Equal(t, map[string]any{"news": float64(12)}, body["cacheAgeSeconds"])
}

func TestActionEndpoint_Success(t *testing.T) {
	engine := &stubEngine{results: map[string]string{"news": `{"category":"all"}`}}
	srv := newTestServer(t, engine)

	resp, err := http.Post(srv.URL+"/v1/actions/news", "application/json", strings.NewReader(`{"limit":3}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "all", body["category"])
	assert.Equal(t, []string{`news {"limit":3}`}, engine.calls)
}

func TestActionEndpoint_ErrorMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantKind   string
	}{
		{fmt.Errorf("%w: bad address", domain.ErrInvalidInput), http.StatusBadRequest, "invalid_input"},
		{domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{domain.ErrDataUnavailable, http.StatusNotFound, "data_unavailable"},
		{domain.ErrConfigurationMissing, http.StatusServiceUnavailable, "configuration_missing"},
		{fmt.Errorf("rpc: %w", domain.ErrUpstream), http.StatusBadGateway, "upstream"},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "upstream"},
	}

	for _, tt := range tests {
		t.Run(tt.wantKind, func(t *testing.T) {
			srv := newTestServer(t, &stubEngine{errs: map[string]error{"risk_analysis": tt.err}})

			resp, err := http.Post(srv.URL+"/v1/actions/risk_analysis", "application/json", nil)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			var body errorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantKind, body.Kind)
			assert.True(t, strings.HasPrefix(body.Error, "risk_analysis failed: "), body.Error)
		})
	}
}

func TestActionEndpoint_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &stubEngine{})

	resp, err := http.Get(srv.URL + "/v1/actions/news")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestListActions(t *testing.T) {
	srv := newTestServer(t, &stubEngine{})

	resp, err := http.Get(srv.URL + "/v1/actions")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"news", "risk_analysis"}, body["actions"])
}

func TestWebSocket_Frames(t *testing.T) {
	engine := &stubEngine{
		results: map[string]string{"news": `{"articles":[]}`},
		errs:    map[string]error{"risk_analysis": domain.ErrNotFound},
	}
	srv := newTestServer(t, engine)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"id":1,"action":"news","params":{}}`)))
	var ok wsResponse
	require.NoError(t, conn.ReadJSON(&ok))
	assert.JSONEq(t, `1`, string(ok.ID))
	assert.JSONEq(t, `{"articles":[]}`, string(ok.Result))
	assert.Nil(t, ok.Error)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"id":"b","action":"risk_analysis"}`)))
	var failed wsResponse
	require.NoError(t, conn.ReadJSON(&failed))
	assert.JSONEq(t, `"b"`, string(failed.ID))
	require.NotNil(t, failed.Error)
	assert.Equal(t, "not_found", failed.Error.Kind)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	var malformed wsResponse
	require.NoError(t, conn.ReadJSON(&malformed))
	require.NotNil(t, malformed.Error)
	assert.Equal(t, "invalid_input", malformed.Error.Kind)

	engine.mu.Lock()
	defer engine.mu.Unlock()
	assert.Len(t, engine.calls, 2)
}

func seedInvocations(t *testing.T) storage.InvocationStore {
	t.Helper()
	store := memory.NewInvocationStore()
	records := []*domain.Invocation{
		{ID: "inv-1", Action: "news", Params: []byte(`{"limit":3}`), ParamsHash: "h1", Status: domain.InvocationOK, DurationMs: 12, Timestamp: 1000},
		{ID: "inv-2", Action: "risk_analysis", ParamsHash: "h2", Status: domain.InvocationError, ErrorKind: "not_found", DurationMs: 40, Timestamp: 2000},
	}
	for _, inv := range records {
		require.NoError(t, store.Insert(context.Background(), inv))
	}
	return store
}

func TestListInvocations(t *testing.T) {
	srv := newTestServerWithStore(t, &stubEngine{}, seedInvocations(t))

	resp, err := http.Get(srv.URL + "/v1/invocations?limit=1")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Invocations []invocationView `json:"invocations"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Invocations, 1)
	assert.Equal(t, "inv-2", body.Invocations[0].ID)
	assert.Equal(t, "not_found", body.Invocations[0].ErrorKind)
	assert.Empty(t, body.Invocations[0].Params)
}

func TestListInvocations_BadLimit(t *testing.T) {
	srv := newTestServerWithStore(t, &stubEngine{}, seedInvocations(t))

	for _, q := range []string{"0", "1001", "ten"} {
		resp, err := http.Get(srv.URL + "/v1/invocations?limit=" + q)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestGetInvocation(t *testing.T) {
	srv := newTestServerWithStore(t, &stubEngine{}, seedInvocations(t))

	resp, err := http.Get(srv.URL + "/v1/invocations/inv-1")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got invocationView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "news", got.Action)
	assert.JSONEq(t, `{"limit":3}`, string(got.Params))
	assert.Equal(t, "ok", got.Status)

	missing, err := http.Get(srv.URL + "/v1/invocations/nope")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestInvocations_NoStore(t *testing.T) {
	srv := newTestServer(t, &stubEngine{})

	resp, err := http.Get(srv.URL + "/v1/invocations")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
