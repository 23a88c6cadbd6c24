// Package flags wires LaunchDarkly feature flags as runtime kill switches.
// The client runs in Offline mode (fixed defaults, no network calls) unless
// an SDK key is supplied, so the server runs with every switch off when no
// LaunchDarkly project is configured.
package flags

import (
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v6"

	"github.com/jffjs/kyev/internal/logging"
)

// StrictFraming, when on, closes a connection on an Invalid RSP frame
// instead of the core's default lenient recovery (drop the buffer and
// keep reading) — the stricter of the two alternatives §9 left open.
const StrictFraming = "strict-framing"

// StrictSetOptions, when on, rejects an unrecognized SET option with
// SyntaxError instead of silently ignoring it, the stricter alternative
// §9 also left open.
const StrictSetOptions = "strict-set-options"

var (
	currentClient *ld.LDClient
	logger        = logging.New("flags")
	systemUser    = ldcontext.NewBuilder("kyev-server").Anonymous(true).Build()
)

// Init creates the LaunchDarkly client. An empty key runs the client
// Offline, so every flag lookup falls through to its default.
func Init(key string) {
	log := logger.Sugar()

	config := ld.Config{}
	if key == "" {
		config.Offline = true
	}

	client, err := ld.MakeCustomClient(key, config, 5*time.Second)
	if err != nil {
		log.Warnw("failed to make LaunchDarkly client", "error", err)
	}
	if client != nil && !client.Initialized() {
		log.Warn("LaunchDarkly client did not initialize; kill switches will use defaults")
	}
	currentClient = client
}

// Close releases the LaunchDarkly client's background resources.
func Close() error {
	if currentClient == nil {
		return nil
	}
	return currentClient.Close()
}

// KillSwitch reports whether the named switch is on for the server as a
// whole, defaulting to false (off) when unreachable.
func KillSwitch(name string) bool {
	log := logger.Sugar()

	if currentClient == nil {
		return false
	}
	result, err := currentClient.BoolVariation(name, systemUser, false)
	if err != nil {
		log.Warnw("failed to evaluate kill switch; using default", "flag", name, "error", err)
	}
	return result
}
