// Package app wires the measurement service together: configuration,
// logging, tracing, storage, the ELN client and the HTTP server with its
// middleware chain. All construction happens here so the packages below stay
// free of wiring concerns.
//
// The typical entry point:
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
package app
