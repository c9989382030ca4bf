package command

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/schema"
)

type levelArgs struct {
	Input  *int     `mapstructure:"input"`
	Output *int     `mapstructure:"output"`
	Level  *float64 `mapstructure:"level"`
}

type flagArgs struct {
	Input  *int  `mapstructure:"input"`
	Output *int  `mapstructure:"output"`
	Mute   *bool `mapstructure:"mute"`
	Solo   *bool `mapstructure:"solo"`
}

type gangArgs struct {
	ID      *int            `mapstructure:"id"`
	Members []gangMemberArg `mapstructure:"members"`
}

type gangMemberArg struct {
	Kind   string `mapstructure:"kind"`
	Input  int    `mapstructure:"input"`
	Output int    `mapstructure:"output"`
}

type stateArgs struct {
	State map[string]any `mapstructure:"state"`
}

type renameArgs struct {
	Name *string `mapstructure:"name"`
}

func decodeArgs(args map[string]any, out any) error {
	if err := mapstructure.Decode(args, out); err != nil {
		return &ArgsError{Err: err}
	}
	return nil
}

// checkInput enforces boundary strictness: the core silently ignores bad
// indices, the command surface rejects them.
func checkInput(desk *patchbay.Matrix, input int) error {
	if input < 0 || input >= desk.NumInputs() {
		return fmt.Errorf("input %d: %w", input, domain.ErrIndexOutOfRange)
	}
	return nil
}

func checkOutput(desk *patchbay.Matrix, output int) error {
	if output < 0 || output >= desk.NumOutputs() {
		return fmt.Errorf("output %d: %w", output, domain.ErrIndexOutOfRange)
	}
	return nil
}

func crosspointPayload(desk *patchbay.Matrix, input, output int) map[string]any {
	xp := desk.Crosspoint(input, output)
	return map[string]any{
		"input":     input,
		"output":    output,
		"connected": xp.Connected(),
		"level":     xp.LevelPtr(),
	}
}

func registerBuiltins(p *Processor) {
	p.Register("setMainLevel", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		var a levelArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Level == nil {
			return nil, argsErrorf("level is required")
		}
		desk.SetMainLevel(*a.Level)
		return map[string]any{"level": desk.MainLevel()}, nil
	})

	p.Register("setInputLevel", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		var a levelArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Input == nil || a.Level == nil {
			return nil, argsErrorf("input and level are required")
		}
		if err := checkInput(desk, *a.Input); err != nil {
			return nil, err
		}
		desk.SetInputLevel(*a.Input, *a.Level)
		return map[string]any{"input": *a.Input, "level": desk.InputLevel(*a.Input)}, nil
	})

	p.Register("setOutputLevel", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		var a levelArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Output == nil || a.Level == nil {
			return nil, argsErrorf("output and level are required")
		}
		if err := checkOutput(desk, *a.Output); err != nil {
			return nil, err
		}
		desk.SetOutputLevel(*a.Output, *a.Level)
		return map[string]any{"output": *a.Output, "level": desk.OutputLevel(*a.Output)}, nil
	})

	p.Register("setCrosspoint", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		var a levelArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Input == nil || a.Output == nil || a.Level == nil {
			return nil, argsErrorf("input, output and level are required")
		}
		if err := checkInput(desk, *a.Input); err != nil {
			return nil, err
		}
		if err := checkOutput(desk, *a.Output); err != nil {
			return nil, err
		}
		desk.SetCrosspoint(*a.Input, *a.Output, *a.Level)
		return crosspointPayload(desk, *a.Input, *a.Output), nil
	})

	p.Register("clearCrosspoint", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		var a levelArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Input == nil || a.Output == nil {
			return nil, argsErrorf("input and output are required")
		}
		if err := checkInput(desk, *a.Input); err != nil {
			return nil, err
		}
		if err := checkOutput(desk, *a.Output); err != nil {
			return nil, err
		}
		desk.ClearCrosspoint(*a.Input, *a.Output)
		return crosspointPayload(desk, *a.Input, *a.Output), nil
	})

	p.Register("getCrosspoint", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		var a levelArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Input == nil || a.Output == nil {
			return nil, argsErrorf("input and output are required")
		}
		if err := checkInput(desk, *a.Input); err != nil {
			return nil, err
		}
		if err := checkOutput(desk, *a.Output); err != nil {
			return nil, err
		}
		return crosspointPayload(desk, *a.Input, *a.Output), nil
	})

	p.Register("muteInput", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		var a flagArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Input == nil || a.Mute == nil {
			return nil, argsErrorf("input and mute are required")
		}
		if err := checkInput(desk, *a.Input); err != nil {
			return nil, err
		}
		desk.SetInputMute(*a.Input, *a.Mute)
		return map[string]any{"input": *a.Input, "muted": desk.InputMuted(*a.Input)}, nil
	})

	p.Register("muteOutput", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		var a flagArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Output == nil || a.Mute == nil {
			return nil, argsErrorf("output and mute are required")
		}
		if err := checkOutput(desk, *a.Output); err != nil {
			return nil, err
		}
		desk.SetOutputMute(*a.Output, *a.Mute)
		return map[string]any{"output": *a.Output, "muted": desk.OutputMuted(*a.Output)}, nil
	})

	p.Register("soloInput", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		var a flagArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Input == nil || a.Solo == nil {
			return nil, argsErrorf("input and solo are required")
		}
		if err := checkInput(desk, *a.Input); err != nil {
			return nil, err
		}
		desk.SetInputSolo(*a.Input, *a.Solo)
		return map[string]any{"input": *a.Input, "soloed": desk.InputSoloed(*a.Input)}, nil
	})

	p.Register("soloOutput", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		var a flagArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Output == nil || a.Solo == nil {
			return nil, argsErrorf("output and solo are required")
		}
		if err := checkOutput(desk, *a.Output); err != nil {
			return nil, err
		}
		desk.SetOutputSolo(*a.Output, *a.Solo)
		return map[string]any{"output": *a.Output, "soloed": desk.OutputSoloed(*a.Output)}, nil
	})

	p.Register("createGang", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		var a gangArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		members := make([]domain.GangMember, 0, len(a.Members))
		for i, m := range a.Members {
			switch domain.GangKind(m.Kind) {
			case domain.GangInput:
				members = append(members, domain.InputMember(m.Input))
			case domain.GangOutput:
				members = append(members, domain.OutputMember(m.Output))
			case domain.GangCrosspoint:
				members = append(members, domain.CrosspointMember(m.Input, m.Output))
			default:
				return nil, argsErrorf("members[%d]: unknown kind %q", i, m.Kind)
			}
		}
		id := desk.CreateGang(members...)
		return map[string]any{"id": id}, nil
	})

	p.Register("removeGang", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		var a gangArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.ID == nil {
			return nil, argsErrorf("id is required")
		}
		if !desk.RemoveGang(*a.ID) {
			return nil, fmt.Errorf("gang %d: %w", *a.ID, domain.ErrGangNotFound)
		}
		return map[string]any{"id": *a.ID}, nil
	})

	p.Register("listGangs", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		gangs := desk.Gangs()
		if gangs == nil {
			gangs = []domain.Gang{}
		}
		return map[string]any{"gangs": gangs}, nil
	})

	p.Register("getActiveRoutes", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		routes := desk.ActiveRoutes()
		if routes == nil {
			routes = []domain.Route{}
		}
		return map[string]any{"routes": routes}, nil
	})

	p.Register("getState", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		return desk.State(), nil
	})

	p.Register("setState", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		var a stateArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.State == nil {
			return nil, argsErrorf("state is required")
		}

		var snap domain.Snapshot
		if err := mapstructure.Decode(a.State, &snap); err != nil {
			return nil, &ArgsError{Err: err}
		}
		if err := schema.Validate(&snap, desk.NumInputs(), desk.NumOutputs()); err != nil {
			return nil, fmt.Errorf("state rejected: %w", err)
		}

		desk.SetState(&snap)
		return map[string]any{"name": desk.Name()}, nil
	})

	p.Register("clear", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		desk.Clear()
		return nil, nil
	})

	p.Register("silent", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		desk.SetSilent()
		return nil, nil
	})

	p.Register("unity", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		desk.SetUnity()
		return nil, nil
	})

	p.Register("rename", func(ctx context.Context, desk *patchbay.Matrix, args map[string]any) (any, error) {
		var a renameArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		if a.Name == nil {
			return nil, argsErrorf("name is required")
		}
		desk.SetName(*a.Name)
		return map[string]any{"name": desk.Name()}, nil
	})
}
