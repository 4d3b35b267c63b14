package sahara

import "github.com/pkg/errors"

var (
	// ErrFramingShort is returned when a read returns fewer than the 8
	// header bytes every Sahara packet needs.
	ErrFramingShort = errors.New("sahara: packet shorter than header")
	// ErrLengthMismatch is returned when the header's declared length does
	// not match the number of bytes actually read off the wire.
	ErrLengthMismatch = errors.New("sahara: declared length does not match bytes read")
	// ErrImageOpen is returned when the bootstrap image file cannot be
	// opened for a READ/READ64 request.
	ErrImageOpen = errors.New("sahara: failed to open bootstrap image")
	// ErrShortImageRead is returned when fewer bytes than requested could
	// be read from the bootstrap image file.
	ErrShortImageRead = errors.New("sahara: short read from bootstrap image")
)
