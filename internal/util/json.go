package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tidwall/jsonc"
)

func ReadJsonConfig(abspath string, v any) error {
	bs, err := os.ReadFile(abspath)

	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", abspath, err)
	}

	bs = jsonc.ToJSONInPlace(bs)

	if err := json.Unmarshal(bs, v); err != nil {
		return fmt.Errorf("error reading %s: failed to parse json: %w", abspath, err)
	}

	return nil
}

// ReadOptionalJsonConfig is ReadJsonConfig for files that may legitimately be
// absent. It reports whether the file existed.
func ReadOptionalJsonConfig(abspath string, v any) (bool, error) {
	err := ReadJsonConfig(abspath, v)

	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return true, err
	}

	return true, nil
}
