// Package log provides the leveled logging interface used throughout researchcast.
//
// The Logger interface has four printf-style methods: Debug, Info, Warn and
// Error. Two implementations are provided:
//
//   - DefaultLogger writes through Go's standard log package.
//   - GologLogger wraps a github.com/kataras/golog logger and is what the
//     researchcast command uses.
//
// # Example Usage
//
//	logger := log.NewConsoleLogger(os.Stderr, log.LogLevelInfo)
//	logger.AddOutput(log.RotatingFile("researchcast.log", 10))
//
//	logger.Info("searching %q", topic)
//	logger.Debug("grounding chunks: %d", n)
//
// Messages below the configured level are dropped. ParseLevel turns names
// such as "debug" or "warn" into a LogLevel, which is how the --log-level flag
// is interpreted.
//
// # Package-level Logger
//
// Packages that are not handed a Logger explicitly log through the package-level
// functions Debug and Warn. SetDefaultLogger replaces the logger they
// use; passing nil silences them.
package log
