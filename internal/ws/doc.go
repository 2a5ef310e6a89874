// Package ws streams resilience events to WebSocket clients.
//
// The Hub is a logging sink: failure records, recovery results, and
// breaker transitions emitted through the event pipeline are fanned out
// to every connected client. Slow clients are dropped rather than
// allowed to stall the pipeline.
//
// Message Types (Client → Server):
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - system: Connection established
//   - event: Resilience event (failure, recovery, breaker transition)
//   - pong: Ping reply
//
// Example Usage:
//
//	hub := ws.NewHub(logger)
//	go hub.Run(ctx)
//	router.GET("/stream", ws.NewHandler(hub, logger).HandleConnection)
package ws
