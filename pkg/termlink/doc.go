// Package termlink simulates a point-to-point serial-style link between a
// client and a server endpoint exchanging delimiter-framed text messages.
//
// Each endpoint accumulates incoming data in a buffer. A read extracts the
// text before the first read delimiter; if no complete frame is buffered the
// endpoint becomes busy and waits until data completes one or its timeout
// expires. Writes append the write delimiter and are delivered to the peer.
//
// # Basic Usage
//
//	s, err := termlink.New(termlink.DefaultConfig(),
//	    termlink.WithEventHandler(termlink.EventFunc(func(env termlink.Envelope) {
//	        if m, ok := env.Event.(termlink.MessageRead); ok {
//	            fmt.Printf("%s read %q\n", m.Endpoint, m.Message)
//	        }
//	    })),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := s.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Stop()
//
//	_ = s.Client().Write(ctx, "hello")
//	_ = s.Server().Read(ctx)
//
// # Events
//
// Endpoint operations report their outcome as events rather than return
// values: [MessageRead] when a frame is extracted, [ReadExpired] when a read
// ends without one, [ReadStateEvent] on Idle/BusyReading changes, and
// [DataOut], [DataIn] and [BufferChanged] for traffic. Events are numbered
// and delivered to the [EventHandler] on a dedicated goroutine in emission
// order. Use [Session.Flush] to wait for delivery.
//
// # Listen Mode
//
// An endpoint in [ModeListen] reads every complete frame as it arrives and
// answers it through the [Responder] set with [WithResponder].
//
// # Lifecycle States
//
// A Session can be in one of five states: [StateStopped], [StateStarting],
// [StateRunning], [StateStopping], or [StateCrashed]. Use [Session.Status] to
// query the current state.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package termlink
