package sahara

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/JoshuaDoes/qdl/internal/qlog"
	"github.com/pkg/errors"
)

// Transport is the narrow contract Engine needs from the USB bulk
// transport: one read, one write, both carrying their own framing/ZLP
// rules. transport.Transport satisfies this without either package
// importing the other.
type Transport interface {
	Read(buf []byte, timeout time.Duration) (int, error)
	Write(buf []byte, eot bool) (int, error)
}

const readTimeout = 1000 * time.Millisecond

// Engine is the Sahara reactive state machine: it reads a packet, dispatches
// on Cmd, and exits when it sees DONE_RESP (cmd=6).
type Engine struct {
	t Transport
}

// NewEngine returns an Engine driving t.
func NewEngine(t Transport) *Engine {
	return &Engine{t: t}
}

// Run drives the Sahara handshake to completion, serving reads for
// bootstrapImage until the target reports DONE_RESP. It returns the
// target-reported status as an error if nonzero, or nil on success.
func (e *Engine) Run(bootstrapImage string) error {
	buf := make([]byte, 4096)

	for {
		n, err := e.t.Read(buf, readTimeout)
		if err != nil {
			return errors.Wrap(err, "sahara: read")
		}

		pkt, err := DecodePacket(buf[:n])
		if err != nil {
			return err
		}
		if int(pkt.Length) != n {
			return ErrLengthMismatch
		}

		switch pkt.Cmd {
		case CmdHello:
			if err := e.handleHello(pkt); err != nil {
				return err
			}
		case CmdRead:
			if err := e.handleRead(pkt, bootstrapImage); err != nil {
				return err
			}
		case CmdRead64:
			if err := e.handleRead64(pkt, bootstrapImage); err != nil {
				return err
			}
		case CmdEndOfImage:
			if err := e.handleEndOfImage(pkt); err != nil {
				return err
			}
		case CmdDoneResp:
			resp := decodeDoneResponse(pkt.Body)
			if resp.Status != 0 {
				return fmt.Errorf("sahara: target reported status %d", resp.Status)
			}
			return nil
		default:
			logUnknownPacket(pkt)
		}
	}
}

func (e *Engine) handleHello(pkt Packet) error {
	if len(pkt.Body) < 16 {
		return ErrLengthMismatch
	}
	req := decodeHelloRequest(pkt.Body)

	resp := encodeHelloResponse(req.Mode)
	if _, err := e.t.Write(resp, true); err != nil {
		return errors.Wrap(err, "sahara: write hello response")
	}
	return nil
}

func (e *Engine) handleRead(pkt Packet, image string) error {
	if len(pkt.Body) < 12 {
		return ErrLengthMismatch
	}
	req := decodeReadRequest(pkt.Body)
	return e.readAndSend(image, int64(req.Offset), int64(req.Length))
}

func (e *Engine) handleRead64(pkt Packet, image string) error {
	if len(pkt.Body) < 24 {
		return ErrLengthMismatch
	}
	req := decodeRead64Request(pkt.Body)
	return e.readAndSend(image, int64(req.Offset), int64(req.Length))
}

func (e *Engine) readAndSend(image string, offset, length int64) error {
	f, err := os.Open(image)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImageOpen, err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrap(err, "sahara: seek bootstrap image")
	}

	chunk := make([]byte, length)
	if _, err := io.ReadFull(f, chunk); err != nil {
		return fmt.Errorf("%w: %w", ErrShortImageRead, err)
	}

	if _, err := e.t.Write(chunk, true); err != nil {
		return errors.Wrap(err, "sahara: write image chunk")
	}
	return nil
}

func (e *Engine) handleEndOfImage(pkt Packet) error {
	if len(pkt.Body) < 8 {
		return ErrLengthMismatch
	}
	req := decodeEndOfImageRequest(pkt.Body)
	if req.Status != 0 {
		// Target reported failure; it will re-request or abandon on its own.
		return nil
	}

	if _, err := e.t.Write(encodeDoneRequest(), true); err != nil {
		return errors.Wrap(err, "sahara: write done request")
	}
	return nil
}

func logUnknownPacket(pkt Packet) {
	// Unknown commands are extensions the device firmware may add; they are
	// logged and ignored rather than treated as fatal.
	qlog.L().Debugf("sahara: unhandled CMD%x: %x", pkt.Cmd, pkt.Body)
}
