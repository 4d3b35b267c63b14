package firehose

import (
	"strconv"
	"time"

	"github.com/JoshuaDoes/qdl/internal/qlog"
)

// DefaultMaxPayloadSize is the session's starting proposal for
// MaxPayloadSizeToTargetInBytes, renegotiated by Configure.
const DefaultMaxPayloadSize = 1048576

// Client drives the Firehose command/response protocol over a Transport.
// It holds no other state than the negotiated payload size; program/patch/
// UFS "apply" behavior are methods on Client rather than separate traits,
// per spec.md §9's composition-over-inheritance note.
type Client struct {
	t              Transport
	MaxPayloadSize int
}

// NewClient returns a Client driving t, with the session payload size at
// its default starting proposal.
func NewClient(t Transport) *Client {
	return &Client{t: t, MaxPayloadSize: DefaultMaxPayloadSize}
}

// Drain absorbs residual bytes on the channel for up to wait, discarding
// whatever it reads. Used once after Sahara hands off to Firehose to let
// the bootloader's startup chatter pass; a read timeout here is expected
// and not reported.
func (c *Client) Drain(wait time.Duration) {
	read(c.t, wait, nil)
}

func configureResponseParser(resp Response) (int, error) {
	if resp.Value != "ACK" {
		return 0, ErrNAK
	}

	proposed, ok := resp.Attrs["MaxPayloadSizeToTargetInBytes"]
	if !ok {
		return 0, ErrMissingAttribute
	}
	size, err := strconv.Atoi(proposed)
	if err != nil {
		return 0, ErrMissingAttribute
	}

	// The target may ask for a different size than proposed.
	if supported, ok := resp.Attrs["MaxPayloadSizeToTargetInBytesSupported"]; ok {
		size, err = strconv.Atoi(supported)
		if err != nil {
			return 0, ErrMissingAttribute
		}
	}
	return size, nil
}

func (c *Client) sendConfigure(payloadSize int, skipStorageInit bool, storage string) (int, error) {
	cfg := newElement("configure")
	cfg.set("MemoryName", storage)
	cfg.set("MaxPayloadSizeToTargetInBytes", strconv.Itoa(payloadSize))
	cfg.set("verbose", "0")
	cfg.set("ZLPAwareHost", "1")
	cfg.set("SkipStorageInit", boolAttr(skipStorageInit))

	if err := write(c.t, *cfg); err != nil {
		return 0, err
	}
	return read(c.t, 0, configureResponseParser)
}

// Configure negotiates the session payload size and memory type, matching
// original_source/firehose.cpp's Firehose::configure: if the target
// proposes a different MaxPayloadSizeToTargetInBytes than offered,
// configure is re-issued with the target's value, which becomes the
// session's MaxPayloadSize.
func (c *Client) Configure(skipStorageInit bool, storage string) error {
	size, err := c.sendConfigure(c.MaxPayloadSize, skipStorageInit, storage)
	if err != nil {
		return err
	}

	if size != c.MaxPayloadSize {
		size, err = c.sendConfigure(size, skipStorageInit, storage)
		if err != nil {
			return err
		}
		c.MaxPayloadSize = size
	}

	qlog.L().Debugf("[CONFIGURE] max payload size: %d", c.MaxPayloadSize)
	return nil
}

func boolAttr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
