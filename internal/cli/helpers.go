// Package cli holds the shared plumbing of the patchbay command line:
// snapshot file IO, logger construction, terminal detection and the
// signal-aware context the long-running commands block on.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/schema"
)

// NewLogger configures the command logger. Debug mode writes to Stderr
// so log lines stay out of the rendered Stdout flow; otherwise the
// commands run silent.
func NewLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// SystemMessage prints a standardized system message to stdout.
func SystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

// LoadSnapshot reads and decodes a desk snapshot file. The codec follows
// the file extension: .yaml/.yml, .msgpack/.bin, anything else is JSON.
func LoadSnapshot(path string) (*domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	snap, err := decodeByExt(path, data)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", filepath.Base(path), err)
	}
	return snap, nil
}

// SaveSnapshot encodes the snapshot with the codec the extension names
// and writes it to path.
func SaveSnapshot(path string, snap *domain.Snapshot) error {
	data, err := encodeByExt(path, snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// RoutesFor resolves the audible routes of a snapshot by loading it into
// a scratch matrix.
func RoutesFor(snap *domain.Snapshot) ([]domain.Route, error) {
	desk, err := patchbay.New(snap.NumInputs, snap.NumOutputs)
	if err != nil {
		return nil, fmt.Errorf("resolve routes: %w", err)
	}
	desk.SetState(snap)
	return desk.ActiveRoutes(), nil
}

func decodeByExt(path string, data []byte) (*domain.Snapshot, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return schema.DecodeYAML(data)
	case ".msgpack", ".bin":
		return schema.DecodeMsgpack(data)
	default:
		return schema.DecodeJSON(data)
	}
}

func encodeByExt(path string, snap *domain.Snapshot) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return schema.EncodeYAML(snap)
	case ".msgpack", ".bin":
		return schema.EncodeMsgpack(snap)
	default:
		return schema.EncodeJSON(snap)
	}
}
