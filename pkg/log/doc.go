// Package log provides the logging abstraction used by logship components.
//
// Library code that logs (the shipper and the tail follower) depends only on
// the Logger interface. The zerolog adapter is the default implementation and
// the no-op logger keeps tests quiet. The encoding and transport packages do
// not log at all; they return errors and leave reporting to the caller.
//
// # Usage
//
//	zl, err := log.NewConsoleLogger("info")
//	if err != nil {
//	    return err
//	}
//	logger := log.NewZerologAdapterWithLogger(zl)
//	logger.Info("sent batch", log.Int("records", 2), log.Int("bytes", 87))
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.1.0
//
// See version.go for version constants that can be used programmatically.
package log
