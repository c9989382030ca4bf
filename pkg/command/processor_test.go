package command_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/pkg/command"
)

func newDesk(t *testing.T) *patchbay.Matrix {
	t.Helper()
	desk, err := patchbay.New(4, 2, patchbay.WithName("foh"))
	require.NoError(t, err)
	return desk
}

func process(t *testing.T, p *command.Processor, desk *patchbay.Matrix, raw string) map[string]any {
	t.Helper()
	out := p.Process(context.Background(), desk, []byte(raw))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(out, &resp), "processor must always answer JSON, got %q", out)
	return resp
}

func TestProcess_SetCrosspointEnvelope(t *testing.T) {
	p := command.NewProcessor()
	desk := newDesk(t)

	resp := process(t, p, desk, `{"command":"setCrosspoint","input":1,"output":0,"level":-6}`)

	require.Equal(t, true, resp["success"], "response: %v", resp)
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "data should be an object, got %v", resp["data"])
	assert.Equal(t, 1.0, data["input"])
	assert.Equal(t, 0.0, data["output"])
	assert.Equal(t, true, data["connected"])
	assert.Equal(t, -6.0, data["level"])

	level, connected := desk.Crosspoint(1, 0).Level()
	require.True(t, connected)
	assert.InDelta(t, -6.0, level, 1e-9)
}

func TestProcess_LevelsClampAndReportBack(t *testing.T) {
	p := command.NewProcessor()
	desk := newDesk(t)

	resp := process(t, p, desk, `{"command":"setInputLevel","input":0,"level":-90}`)

	require.Equal(t, true, resp["success"])
	data := resp["data"].(map[string]any)
	assert.Equal(t, -60.0, data["level"], "reported level should be the clamped value")
	assert.InDelta(t, -60.0, desk.InputLevel(0), 1e-9)
}

func TestProcess_UnknownCommand(t *testing.T) {
	p := command.NewProcessor()
	desk := newDesk(t)

	resp := process(t, p, desk, `{"command":"warpCore"}`)

	require.Equal(t, false, resp["success"])
	assert.Equal(t, command.CodeUnknownCommand, resp["code"])
	assert.Contains(t, resp["error"], "warpCore")
}

func TestProcess_MalformedEnvelopes(t *testing.T) {
	p := command.NewProcessor()
	desk := newDesk(t)

	tests := []struct {
		name string
		raw  string
	}{
		{"truncated json", `{"command":`},
		{"missing command key", `{"input":1,"level":0}`},
		{"non-string command", `{"command":7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := process(t, p, desk, tt.raw)
			require.Equal(t, false, resp["success"])
			assert.Equal(t, command.CodeInvalidArgs, resp["code"])
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestProcess_ArgumentErrorCodes(t *testing.T) {
	p := command.NewProcessor()
	desk := newDesk(t)

	tests := []struct {
		name string
		raw  string
		code string
	}{
		{"missing level", `{"command":"setInputLevel","input":0}`, command.CodeInvalidArgs},
		{"wrong arg type", `{"command":"setInputLevel","input":"loud","level":0}`, command.CodeInvalidArgs},
		{"input out of range", `{"command":"setInputLevel","input":99,"level":0}`, command.CodeIndexOutOfRange},
		{"negative output", `{"command":"muteOutput","output":-1,"mute":true}`, command.CodeIndexOutOfRange},
		{"crosspoint off grid", `{"command":"setCrosspoint","input":0,"output":5,"level":0}`, command.CodeIndexOutOfRange},
		{"unknown gang", `{"command":"removeGang","id":42}`, command.CodeGangNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := process(t, p, desk, tt.raw)
			require.Equal(t, false, resp["success"], "response: %v", resp)
			assert.Equal(t, tt.code, resp["code"])
		})
	}
}

func TestProcess_GangLifecycle(t *testing.T) {
	p := command.NewProcessor()
	desk := newDesk(t)

	resp := process(t, p, desk, `{"command":"createGang","members":[{"kind":"input","input":0},{"kind":"input","input":1}]}`)
	require.Equal(t, true, resp["success"], "response: %v", resp)
	assert.Equal(t, 1.0, resp["data"].(map[string]any)["id"])

	resp = process(t, p, desk, `{"command":"setInputLevel","input":0,"level":-6}`)
	require.Equal(t, true, resp["success"])
	assert.InDelta(t, -6.0, desk.InputLevel(1), 1e-9, "ganged partner should follow")

	resp = process(t, p, desk, `{"command":"listGangs"}`)
	require.Equal(t, true, resp["success"])
	gangs := resp["data"].(map[string]any)["gangs"].([]any)
	require.Len(t, gangs, 1)

	resp = process(t, p, desk, `{"command":"removeGang","id":1}`)
	require.Equal(t, true, resp["success"])

	resp = process(t, p, desk, `{"command":"removeGang","id":1}`)
	require.Equal(t, false, resp["success"])
	assert.Equal(t, command.CodeGangNotFound, resp["code"])
}

func TestProcess_CreateGangRejectsUnknownKind(t *testing.T) {
	p := command.NewProcessor()
	desk := newDesk(t)

	resp := process(t, p, desk, `{"command":"createGang","members":[{"kind":"bus","input":0}]}`)

	require.Equal(t, false, resp["success"])
	assert.Equal(t, command.CodeInvalidArgs, resp["code"])
	assert.Contains(t, resp["error"], "bus")
	assert.Empty(t, desk.Gangs(), "no gang should be created from bad members")
}

func TestProcess_StateRoundTrip(t *testing.T) {
	p := command.NewProcessor()

	src := newDesk(t)
	src.SetUnity()
	src.SetInputLevel(0, -3)
	src.SetName("act one")

	stateJSON, err := json.Marshal(src.State())
	require.NoError(t, err)

	dst := newDesk(t)
	resp := process(t, p, dst, fmt.Sprintf(`{"command":"setState","state":%s}`, stateJSON))
	require.Equal(t, true, resp["success"], "response: %v", resp)

	assert.Equal(t, "act one", dst.Name())
	assert.InDelta(t, -3.0, dst.InputLevel(0), 1e-9)
	assert.True(t, dst.Crosspoint(0, 0).Connected())
	assert.True(t, dst.Crosspoint(1, 1).Connected())

	resp = process(t, p, dst, `{"command":"getState"}`)
	require.Equal(t, true, resp["success"])
	data := resp["data"].(map[string]any)
	assert.Equal(t, "act one", data["name"])
	assert.Equal(t, 4.0, data["numInputs"])
	assert.Equal(t, 2.0, data["numOutputs"])
}

func TestProcess_SetStateRejectsWrongDimensions(t *testing.T) {
	p := command.NewProcessor()
	desk := newDesk(t)

	small := `{"name":"tiny","numInputs":1,"numOutputs":1,"mainLevel":0,` +
		`"inputLevels":[0],"outputLevels":[0],"crosspoints":[[null]],` +
		`"inputMutes":[false],"outputMutes":[false],"inputSolos":[false],"outputSolos":[false]}`

	resp := process(t, p, desk, `{"command":"setState","state":`+small+`}`)

	require.Equal(t, false, resp["success"])
	assert.Equal(t, command.CodeInvalidSnapshot, resp["code"])
	assert.Contains(t, resp["error"], "numInputs")
	assert.Equal(t, "foh", desk.Name(), "rejected state must not touch the desk")
}

func TestProcess_SceneCommands(t *testing.T) {
	p := command.NewProcessor()
	desk := newDesk(t)

	resp := process(t, p, desk, `{"command":"unity"}`)
	require.Equal(t, true, resp["success"])

	resp = process(t, p, desk, `{"command":"getActiveRoutes"}`)
	require.Equal(t, true, resp["success"])
	routes := resp["data"].(map[string]any)["routes"].([]any)
	assert.Len(t, routes, 2, "unity on a 4x2 desk connects the two diagonal points")

	resp = process(t, p, desk, `{"command":"silent"}`)
	require.Equal(t, true, resp["success"])
	assert.False(t, desk.Crosspoint(0, 0).Connected())

	resp = process(t, p, desk, `{"command":"rename","name":"monitors"}`)
	require.Equal(t, true, resp["success"])
	assert.Equal(t, "monitors", desk.Name())

	resp = process(t, p, desk, `{"command":"clear"}`)
	require.Equal(t, true, resp["success"])
	assert.Equal(t, "monitors", desk.Name(), "clear keeps the desk name")
	assert.Nil(t, resp["data"], "clear has no payload")
}

func TestProcess_EmptyRoutesAreAnArray(t *testing.T) {
	p := command.NewProcessor()
	desk := newDesk(t)

	out := p.Process(context.Background(), desk, []byte(`{"command":"getActiveRoutes"}`))
	assert.Contains(t, string(out), `"routes":[]`, "no routes must encode as [], not null")
}

func TestExecute_LatencyObserver(t *testing.T) {
	var (
		gotCommand string
		gotElapsed time.Duration
		calls      int
	)
	p := command.NewProcessor(command.WithLatencyObserver(func(cmd string, elapsed time.Duration) {
		gotCommand = cmd
		gotElapsed = elapsed
		calls++
	}))
	desk := newDesk(t)

	_, err := p.Execute(context.Background(), desk, "clear", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "clear", gotCommand)
	assert.GreaterOrEqual(t, gotElapsed, time.Duration(0))

	_, err = p.Execute(context.Background(), desk, "doesNotExist", nil)
	require.ErrorIs(t, err, command.ErrUnknownCommand)
	assert.Equal(t, 1, calls, "unknown commands are not timed")
}

func TestProcessor_RegisterCustomCommand(t *testing.T) {
	p := command.NewProcessor()
	desk := newDesk(t)

	p.Register("fadeToBlack", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		desk.SetMainLevel(-60)
		return map[string]any{"level": desk.MainLevel()}, nil
	})

	resp := process(t, p, desk, `{"command":"fadeToBlack"}`)
	require.Equal(t, true, resp["success"])
	assert.InDelta(t, -60.0, desk.MainLevel(), 1e-9)
	assert.Contains(t, p.Commands(), "fadeToBlack")
}
