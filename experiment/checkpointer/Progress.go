package checkpointer

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// partialSuffix marks the keys of snapshots taken part way through
// training
const partialSuffix = ".partial"

// PartialKey returns the key under which checkpoints of an unfinished
// run stored under key are saved. A finished run is only ever saved
// under key itself.
func PartialKey(key string) string {
	return key + partialSuffix
}

// Progress is a snapshot of Object after Episodes training episodes
type Progress struct {
	Episodes int
	Object   Serializable
}

type progressSnapshot struct {
	Episodes int
	Object   []byte
}

// GobEncode implements the gob.GobEncoder interface
func (p *Progress) GobEncode() ([]byte, error) {
	data, err := p.Object.GobEncode()
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %w", err)
	}

	var buf bytes.Buffer
	err = gob.NewEncoder(&buf).Encode(progressSnapshot{p.Episodes, data})
	return buf.Bytes(), err
}

// GobDecode implements the gob.GobDecoder interface. Object must be set
// to the value to decode into.
func (p *Progress) GobDecode(data []byte) error {
	var snap progressSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}
	if err := p.Object.GobDecode(snap.Object); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}
	p.Episodes = snap.Episodes
	return nil
}
