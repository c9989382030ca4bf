package schema

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/patchbay/pkg/domain"
)

// EncodeJSON renders a snapshot as indented JSON, the format the HTTP API
// and the CLI exchange.
func EncodeJSON(snap *domain.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot json: %w", err)
	}
	return data, nil
}

// DecodeJSON parses a JSON snapshot. Unknown fields are tolerated for
// forward compatibility; shape is checked separately by Validate.
func DecodeJSON(data []byte) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot json: %w", err)
	}
	return &snap, nil
}

// EncodeYAML renders a snapshot as YAML, the on-disk format of the file
// store.
func EncodeYAML(snap *domain.Snapshot) ([]byte, error) {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot yaml: %w", err)
	}
	return data, nil
}

// DecodeYAML parses a YAML snapshot.
func DecodeYAML(data []byte) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot yaml: %w", err)
	}
	return &snap, nil
}

// EncodeMsgpack renders a snapshot in msgpack, the compact format the
// Redis and Badger stores persist.
func EncodeMsgpack(snap *domain.Snapshot) ([]byte, error) {
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot msgpack: %w", err)
	}
	return data, nil
}

// DecodeMsgpack parses a msgpack snapshot.
func DecodeMsgpack(data []byte) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot msgpack: %w", err)
	}
	return &snap, nil
}
