package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/pkg/adapters/memory"
	"github.com/aretw0/patchbay/pkg/session"
)

func newTestHandler(t *testing.T) (http.Handler, *session.Manager) {
	t.Helper()
	mgr := session.NewManager(memory.NewStore())
	handler, err := NewHandler(mgr)
	require.NoError(t, err)
	return handler, mgr
}

func do(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestGetHealth(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := do(t, handler, "GET", "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := do(t, handler, "GET", "/info", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "patchbay-http", resp["app"])
	assert.NotEmpty(t, resp["version"])
	assert.Equal(t, "0.2.0", resp["apiVersion"])
}

func TestOpenAPIDocumentIsServed(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := do(t, handler, "GET", "/openapi.json", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &doc))
	info := doc["info"].(map[string]any)
	assert.Equal(t, "Patchbay API", info["title"])

	rr = do(t, handler, "GET", "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "openapi: 3.0.3")

	rr = do(t, handler, "GET", "/docs", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "swagger-ui")
}

func TestDeskLifecycle(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := do(t, handler, "POST", "/desks", `{"id":"foh","inputs":4,"outputs":2}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var snap map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, "foh", snap["name"])
	assert.Equal(t, 4.0, snap["numInputs"])

	rr = do(t, handler, "POST", "/desks", `{"id":"foh","inputs":4,"outputs":2}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, handler, "POST", "/desks", `{"id":"bad","inputs":0,"outputs":2}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, handler, "GET", "/desks", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list map[string][]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, []string{"foh"}, list["desks"])

	rr = do(t, handler, "GET", "/desks/foh", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, handler, "DELETE", "/desks/foh", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, handler, "GET", "/desks/foh", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	var fail map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fail))
	assert.Contains(t, fail["error"], "foh")
}

func TestCommandEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t)
	do(t, handler, "POST", "/desks", `{"id":"foh","inputs":4,"outputs":2}`)

	rr := do(t, handler, "POST", "/desks/foh/commands",
		`{"command":"setCrosspoint","input":0,"output":1,"level":-6}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"], rr.Body.String())

	rr = do(t, handler, "GET", "/desks/foh/routes", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var routes map[string][]map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &routes))
	require.Len(t, routes["routes"], 1)
	assert.Equal(t, 1.0, routes["routes"][0]["output"])

	// command failures keep HTTP 200; the envelope carries the error
	rr = do(t, handler, "POST", "/desks/foh/commands", `{"command":"warpCore"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])

	rr = do(t, handler, "POST", "/desks/nope/commands", `{"command":"clear"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPutStateValidation(t *testing.T) {
	handler, mgr := newTestHandler(t)
	do(t, handler, "POST", "/desks", `{"id":"foh","inputs":2,"outputs":2}`)

	tiny := `{"name":"tiny","numInputs":1,"numOutputs":1,"mainLevel":0,` +
		`"inputLevels":[0],"outputLevels":[0],"crosspoints":[[null]],` +
		`"inputMutes":[false],"outputMutes":[false],"inputSolos":[false],"outputSolos":[false]}`
	rr := do(t, handler, "PUT", "/desks/foh/state", tiny)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())

	good := `{"name":"act two","numInputs":2,"numOutputs":2,"mainLevel":-3,` +
		`"inputLevels":[0,-6],"outputLevels":[0,0],"crosspoints":[[0,null],[null,0]],` +
		`"inputMutes":[false,false],"outputMutes":[false,false],"inputSolos":[false,false],"outputSolos":[false,false]}`
	rr = do(t, handler, "PUT", "/desks/foh/state", good)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var snap map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, "act two", snap["name"])
	assert.Equal(t, -3.0, snap["mainLevel"])

	err := mgr.WithDesk(context.Background(), "foh", func(_ context.Context, desk *patchbay.Matrix) error {
		assert.InDelta(t, -6.0, desk.InputLevel(1), 1e-9)
		return nil
	})
	require.NoError(t, err)
}

func TestSaveAndLoadDesk(t *testing.T) {
	handler, _ := newTestHandler(t)
	do(t, handler, "POST", "/desks", `{"id":"foh","inputs":2,"outputs":2}`)
	do(t, handler, "POST", "/desks/foh/commands", `{"command":"setMainLevel","level":-6}`)

	rr := do(t, handler, "POST", "/desks/foh/save", "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	do(t, handler, "POST", "/desks/foh/commands", `{"command":"setMainLevel","level":3}`)

	rr = do(t, handler, "POST", "/desks/foh/load", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var snap map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, -6.0, snap["mainLevel"])
}

func TestGraphEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t)
	do(t, handler, "POST", "/desks", `{"id":"foh","inputs":2,"outputs":2}`)
	do(t, handler, "POST", "/desks/foh/commands", `{"command":"unity"}`)

	rr := do(t, handler, "GET", "/desks/foh/graph", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "graph LR")
	assert.Contains(t, rr.Body.String(), "in0")
}

func TestDeskEventsStream(t *testing.T) {
	handler, _ := newTestHandler(t)
	do(t, handler, "POST", "/desks", `{"id":"foh","inputs":2,"outputs":2}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/desks/foh/events", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(wSub, reqSub)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond) // let the subscription register

	rr := do(t, handler, "POST", "/desks/foh/commands",
		`{"command":"setInputLevel","input":1,"level":-12}`)
	require.Equal(t, http.StatusOK, rr.Code)

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	output := wSub.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, `"kind":"input"`)
	assert.Contains(t, output, `"value":-12`)
}

func TestDeskEventsKindFilter(t *testing.T) {
	handler, _ := newTestHandler(t)
	do(t, handler, "POST", "/desks", `{"id":"foh","inputs":2,"outputs":2}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest("GET", "/desks/foh/events?kinds=inputMute", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		handler.ServeHTTP(wSub, reqSub)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)

	do(t, handler, "POST", "/desks/foh/commands", `{"command":"setInputLevel","input":0,"level":-3}`)
	do(t, handler, "POST", "/desks/foh/commands", `{"command":"muteInput","input":0,"mute":true}`)

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	output := wSub.Body.String()
	assert.Contains(t, output, `"kind":"inputMute"`)
	assert.NotContains(t, output, `"kind":"input",`, "level event should be filtered out")
}

func TestEventsForMissingDesk(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := do(t, handler, "GET", "/desks/ghost/events", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
