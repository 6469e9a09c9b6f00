package observability

import (
	"strings"

	"github.com/rs/zerolog"
)

// LogEnvironment writes one debug event per KEY=VALUE entry.
func LogEnvironment(log zerolog.Logger, environ []string) {
	log.Debug().Int("count", len(environ)).Msg("BEGIN env")
	for _, kv := range environ {
		key, value, _ := strings.Cut(kv, "=")
		log.Debug().Str("key", key).Str("value", value).Msg("hook env")
	}
	log.Debug().Msg("END env")
}

// LogArgs records the process name and its arguments.
func LogArgs(log zerolog.Logger, args []string) {
	if len(args) == 0 {
		return
	}
	log.Debug().Str("process", args[0]).Strs("argv", args[1:]).Msg("hook args")
}
