// Package logship provides an embeddable agent that follows a log file and
// ships every new line as binary batches over TCP or UDP.
//
// The wire format lives in [github.com/bft-labs/logship/pkg/wire], the
// transport in [github.com/bft-labs/logship/pkg/sender]. This package wires
// them to a file follower and adds a start/stop lifecycle.
//
// # Basic Usage
//
//	cfg := logship.Config{
//	    Path: "/var/log/app.log",
//	    Shipper: shipper.Config{
//	        Host:          "10.0.0.5",
//	        Port:          9101,
//	        Mode:          sender.ModeStream,
//	        Magic:         wire.DefaultMagic,
//	        Version:       wire.DefaultVersion,
//	        Level:         wire.LevelInfo,
//	        Code:          1001,
//	        MaxBatchBytes: 1400,
//	    },
//	}
//
//	agent, err := logship.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer agent.Close()
//
//	if err := agent.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := agent.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Lifecycle States
//
// An Agent is in one of five states: [StateStopped], [StateStarting],
// [StateRunning], [StateStopping] or [StateCrashed]. Use [Agent.Status] to
// query it and [WithEventHandler] to be told about transitions.
package logship
