package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/safeopen"
	"github.com/samber/lo"
)

// ErrInvalidKey is returned when a key is not a base 10 int64.
var ErrInvalidKey = errors.New("invalid key")

func parseKeys(raw []string) ([]int64, error) {
	fields := lo.Compact(lo.Map(raw, func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	keys := make([]int64, 0, len(fields))
	for _, field := range fields {
		key, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w %q", ErrInvalidKey, field)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// readKeysFile reads keys separated by commas or whitespace.
func readKeysFile(path string) ([]int64, error) {
	f, err := safeopen.OpenBeneath(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("open keys file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read keys file: %w", err)
	}
	return parseKeys(strings.FieldsFunc(string(content), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	}))
}
