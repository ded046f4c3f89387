// Package gateway binds WebSocket connections to terminal sessions.
//
// A client connects to /ws?scenarioId=<id>. The gateway assigns a UUID
// connection identity and asks the lifecycle manager to start the session in
// the background while it reads client frames.
//
// Frames from the server are binary terminal output, byte for byte, and the
// text event {"type":"scenario-ready"}. Clients send input as binary frames or
// as {"type":"input","data":"..."}, and may send
// {"type":"resize","cols":N,"rows":M}, which is accepted and ignored.
//
// When the read loop ends (client close, network error, missed pong) the
// session is disconnected. A rejected session gets its diagnostic lines as
// output frames and the connection is closed.
package gateway
