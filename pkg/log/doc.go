/*
Package log provides structured logging for podlink using zerolog.

The package wraps zerolog with a global logger, component-scoped child
loggers, and a PODLINK_LOG_LEVEL environment knob that is read once when a
client is constructed. Output defaults to human-readable console format;
JSON output is available for embedding programs that aggregate logs.

Usage:

	log.Init(log.Config{Level: log.LevelFromEnv()})

	tlog := log.WithComponent("tunnel")
	tlog.Debug().Str("socket", sock).Msg("forward socket ready")
*/
package log
