// Package codec centralizes JSON encoding for delta payloads and spec
// documents so every store backend produces byte-identical output.
package codec

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

func Decode[T any](bz []byte) (T, error) {
	comp := new(T)
	err := json.Unmarshal(bz, comp)
	if err != nil {
		return *comp, eris.Wrap(err, "")
	}
	return *comp, nil
}

func Encode(comp any) ([]byte, error) {
	bz, err := json.Marshal(comp)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return bz, nil
}

// EncodeIndent renders comp as indented JSON. Used for the on-disk save
// files, which are meant to be diffed and hand-inspected.
func EncodeIndent(comp any) ([]byte, error) {
	bz, err := json.MarshalIndent(comp, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return bz, nil
}
