// Package sender delivers encoded log batches to a collector over TCP or UDP.
//
// Each Send is a complete, independent operation: the destination is resolved,
// one socket is opened, the batch is written and the socket is closed again on
// every exit path. Nothing is retried, buffered or logged here; failures are
// returned to the caller as a *SendError.
//
// # Usage
//
// Open a Stack once per process and release it when done:
//
//	stack, err := sender.Open()
//	if err != nil {
//	    return err
//	}
//	defer stack.Close()
//
//	if err := stack.Send(ctx, "127.0.0.1", 9101, sender.ModeStream, batch); err != nil {
//	    if errors.Is(err, sender.ErrConnectFailed) {
//	        // collector is down
//	    }
//	    return err
//	}
//
// # Delivery modes
//
// Datagram mode issues a single WriteTo of the whole batch and treats a short
// write as failure; UDP has no way to resume a partial datagram. Stream mode
// keeps writing the unsent remainder until the batch is fully written. One
// datagram, or one connection, carries exactly one batch.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package sender
