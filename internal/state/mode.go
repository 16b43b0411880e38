package state

import (
	"fmt"
	"strings"
)

// Mode routes every mutation to one engine. It is fixed per Store.
type Mode int

const (
	Local Mode = iota
	Remote
)

func (m Mode) String() string {
	switch m {
	case Local:
		return "local"
	case Remote:
		return "remote"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts "local" and "remote"; empty means local.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "local":
		return Local, nil
	case "remote":
		return Remote, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}
