package sampler

import (
	"fmt"
	"strings"

	// Packages
	llamachat "github.com/mutablelogic/go-llamachat"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// MirostatMode selects the mirostat sampling algorithm
type MirostatMode string

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	MirostatOff MirostatMode = "Off"
	MirostatV1  MirostatMode = "Version 1.0"
	MirostatV2  MirostatMode = "Version 2.0"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ParseMirostatMode returns the mode for a label. The labels "0", "1", "2",
// "v1" and "v2" are accepted as shorthand.
func ParseMirostatMode(label string) (MirostatMode, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "off", "0":
		return MirostatOff, nil
	case "version 1.0", "v1", "1":
		return MirostatV1, nil
	case "version 2.0", "v2", "2":
		return MirostatV2, nil
	}
	return "", llamachat.ErrBadParameter.Withf("mirostat mode: %q", label)
}

// Code returns the integer sent to the server. It panics for a label
// which is not one of the three modes.
func (m MirostatMode) Code() int {
	switch m {
	case MirostatOff:
		return 0
	case MirostatV1:
		return 1
	case MirostatV2:
		return 2
	}
	panic(fmt.Sprintf("invalid mirostat mode: %q", string(m)))
}

// UnmarshalText accepts the shorthand labels when decoding configuration
func (m *MirostatMode) UnmarshalText(text []byte) error {
	mode, err := ParseMirostatMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
