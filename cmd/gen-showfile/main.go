package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/patchbay/internal/cli"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/dsl"
)

func main() {
	targetDir := "examples/showfiles"
	if len(os.Args) > 1 {
		targetDir = os.Args[1]
	}

	// Ensure dir exists
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		panic(err)
	}

	fmt.Printf("Generating show files in: %s\n", targetDir)

	// 1. Front of house: an 8x4 board mid-show. Vocal pair ganged so one
	// fader rides both, a dead channel muted, unity diagonal underneath.
	foh := dsl.New(8, 4).
		Name("foh").
		Main(-3).
		Unity()
	foh.Input(0).Level(-6).Patch(1, -3)
	foh.Input(1).Level(-4).Patch(1, -3)
	foh.Input(2).Mute()
	foh.Output(3).Level(2)
	foh.Gang(domain.InputMember(0), domain.InputMember(1))
	write(filepath.Join(targetDir, "foh.json"), foh)

	// 2. Monitor wedges: straight unity sends, drummer wedge pushed.
	mon := dsl.New(4, 4).
		Name("monitors").
		Unity()
	mon.Output(2).Level(4)
	write(filepath.Join(targetDir, "monitors.yaml"), mon)

	// 3. Broadcast feed: a stereo downmix held well under the house mix.
	bc := dsl.New(8, 2).
		Name("broadcast").
		Main(-6)
	bc.Input(0).Patch(0, 0).Patch(1, 0)
	bc.Input(1).Patch(0, -2)
	bc.Input(2).Patch(1, -2)
	write(filepath.Join(targetDir, "broadcast.msgpack"), bc)

	fmt.Println("Done. Verify contents in", targetDir)
}

// write compiles the desk and saves it with the codec the extension names.
func write(path string, b *dsl.Builder) {
	snap, err := b.Snapshot()
	check(err)
	check(cli.SaveSnapshot(path, snap))
	fmt.Println(" -", path)
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}
