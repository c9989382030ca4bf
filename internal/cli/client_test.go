package cli

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/aretw0/patchbay/internal/adapters/http"
	"github.com/aretw0/patchbay/pkg/adapters/memory"
	"github.com/aretw0/patchbay/pkg/session"
)

func newTestServer(t *testing.T) (*Client, *session.Manager) {
	t.Helper()

	manager := session.NewManager(memory.NewStore())
	handler, err := httpadapter.NewHandler(manager)
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	// Trailing slash exercises base URL normalization.
	return NewClient(srv.URL + "/"), manager
}

func TestClient_State(t *testing.T) {
	client, manager := newTestServer(t)
	ctx := context.Background()

	_, err := manager.Create(ctx, "foh", 4, 2)
	require.NoError(t, err)

	snap, err := client.State(ctx, "foh")
	require.NoError(t, err)
	assert.Equal(t, "foh", snap.Name)
	assert.Equal(t, 4, snap.NumInputs)

	_, err = client.State(ctx, "ghost")
	assert.ErrorContains(t, err, "ghost")
}

func TestClient_Command(t *testing.T) {
	client, manager := newTestServer(t)
	ctx := context.Background()

	_, err := manager.Create(ctx, "foh", 2, 2)
	require.NoError(t, err)

	res, err := client.Command(ctx, "foh", []byte(`{"command":"setCrosspoint","input":0,"output":1,"level":-3}`))
	require.NoError(t, err)
	assert.Contains(t, string(res), `"success":true`)

	// Command failures still travel inside the envelope.
	res, err = client.Command(ctx, "foh", []byte(`{"command":"warpCore"}`))
	require.NoError(t, err)
	assert.Contains(t, string(res), `"unknownCommand"`)
}

func TestClient_Graph(t *testing.T) {
	client, manager := newTestServer(t)
	ctx := context.Background()

	_, err := manager.Create(ctx, "foh", 2, 2)
	require.NoError(t, err)

	diagram, err := client.Graph(ctx, "foh")
	require.NoError(t, err)
	assert.Contains(t, diagram, "graph LR")
}
