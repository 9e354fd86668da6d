package store

import (
	"encoding/json"
	"os"
)

func (d Dir) readJSON(out interface{}, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return d.errorf("read", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return d.errorf("decode", path, err)
	}
	return nil
}

func marshalJSON(in interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
