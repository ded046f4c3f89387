package orchestrator

import (
	"dojo/internal/containerizer"
	"dojo/pkg/logging"
)

// readBufferSize bounds a single output message. Chunks are forwarded as
// read, never coalesced or split further.
const readBufferSize = 32 * 1024

// Client is the connection side of a session as seen by the manager.
type Client interface {
	// SendOutput delivers one chunk of terminal output, byte for byte.
	SendOutput(p []byte) error
	// SendReady delivers the scenario-ready event.
	SendReady() error
	// Close ends the connection.
	Close() error
}

// pump relays one process output stream to the client until EOF. When the
// client stops accepting data the stream is still drained so the process is
// never blocked on a full pipe.
func pump(stream containerizer.Stream, client Client, sessionID string) {
	buf := make([]byte, readBufferSize)
	clientGone := false

	for {
		n, err := stream.Reader.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])

			if stream.Name == "stderr" {
				logging.Debug("Lifecycle", "Session %s stderr: %q", logging.TruncateSessionID(sessionID), chunk)
			}

			if !clientGone {
				if sendErr := client.SendOutput(chunk); sendErr != nil {
					logging.Debug("Lifecycle", "Session %s output dropped: %v", logging.TruncateSessionID(sessionID), sendErr)
					clientGone = true
				}
			}
		}
		if err != nil {
			return
		}
	}
}
