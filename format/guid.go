package format

import (
	"encoding/hex"
	"fmt"
)

// GUID is the 128-bit record identifier. Records are addressed by GUID and
// references between records carry the target GUID only; resolution happens
// through the record index, never through pointers.
type GUID [16]byte

// NilGUID is the all-zero GUID, used by null references.
var NilGUID GUID

// IsNil reports whether the GUID is all zeroes. References decode to NilGUID
// when the on-disk link is empty.
func (g GUID) IsNil() bool {
	return g == NilGUID
}

// String renders the GUID in the canonical 8-4-4-4-12 form.
func (g GUID) String() string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", g[0:4], g[4:6], g[6:8], g[8:10], g[10:16])
}

// ParseGUID parses the canonical 8-4-4-4-12 form.
func ParseGUID(s string) (GUID, error) {
	var g GUID
	if len(s) != 36 || s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return g, fmt.Errorf("invalid guid %q", s)
	}
	raw := s[0:8] + s[9:13] + s[14:18] + s[19:23] + s[24:36]
	b, err := hex.DecodeString(raw)
	if err != nil {
		return g, fmt.Errorf("invalid guid %q: %w", s, err)
	}
	copy(g[:], b)
	return g, nil
}
