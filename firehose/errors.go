package firehose

import "github.com/pkg/errors"

var (
	// ErrTruncatedPacket is returned when a read buffer's trailing bytes
	// never reach a </data> terminator.
	ErrTruncatedPacket = errors.New("firehose: truncated response packet")
	// ErrMalformedPacket is returned when a complete </data>-terminated
	// packet parses into neither a log nor a response. XML syntax errors in
	// a packet are returned as the decoder's error, wrapped with context.
	ErrMalformedPacket = errors.New("firehose: malformed response packet")
	// ErrNAK is returned when the target responds with anything other
	// than value="ACK".
	ErrNAK = errors.New("firehose: target returned NAK")
	// ErrMissingAttribute is returned when a response is missing an
	// attribute a command-specific parser required.
	ErrMissingAttribute = errors.New("firehose: response missing required attribute")
)
