package llamachat

import (
	"context"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Logger is the logging interface used throughout the module. Print and
// Printf log at informational level, Debug and Debugf are only emitted when
// debugging is enabled.
type Logger interface {
	Print(context.Context, ...any)
	Printf(context.Context, string, ...any)
	Debug(context.Context, ...any)
	Debugf(context.Context, string, ...any)
}
