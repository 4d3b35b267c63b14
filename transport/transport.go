// Package transport drives the USB bulk endpoints an EDL target exposes:
// vendor 0x05c6, product 0x9008, a vendor-class interface with one bulk IN
// and one bulk OUT endpoint. It owns chunking large writes to the output
// max-packet size and appending the zero-length packet that marks
// end-of-transfer on the wire, and surfaces timeouts and short transfers as
// distinct, typed conditions so the caller can decide retry vs abort.
package transport

import (
	"context"
	"time"

	"github.com/google/gousb"
	"github.com/pkg/errors"
)

const (
	vendorID  = 0x05c6
	productID = 0x9008

	ifaceClass    = 0xff
	ifaceSubclass = 0xff
)

var (
	// ErrTimeout is returned when a bulk transfer does not complete within
	// the caller-supplied timeout.
	ErrTimeout = errors.New("transport: timeout")
	// ErrShortTransfer is returned when a write accepts fewer bytes than
	// requested and no timeout occurred.
	ErrShortTransfer = errors.New("transport: short transfer")
	// ErrNoDevice reports that enumeration found no matching device or no
	// usable interface on it. Open treats it as "not yet attached" and keeps
	// polling until a device appears or its context is canceled.
	ErrNoDevice = errors.New("transport: no EDL device found")
)

func validProtocol(p int) bool {
	return p == 0xff || p == 0x10
}

// bulkWriter and bulkReader narrow gousb's endpoint types to what Transport
// needs, so tests can exercise the chunking/ZLP logic against a fake
// endpoint instead of real USB hardware.
type bulkWriter interface {
	WriteContext(ctx context.Context, p []byte) (int, error)
}

type bulkReader interface {
	ReadContext(ctx context.Context, p []byte) (int, error)
}

// Transport is an acquired USB interface carrying the file/device handle,
// the input/output endpoint ids, and their max-packet sizes. It is created
// by Open and destroyed by Close, and is owned exclusively by whatever
// orchestrates Sahara then Firehose over it.
type Transport struct {
	ctx  *gousb.Context
	dev  *gousb.Device
	cfg  *gousb.Config
	intf *gousb.Interface

	out bulkWriter
	in  bulkReader

	outMaxPkt int
	inMaxPkt  int

	closed bool
}

// Open enumerates USB devices for the EDL vendor/product id, finds the
// vendor-class interface with one bulk-IN and one bulk-OUT endpoint, claims
// it, and returns a ready Transport. If no device is attached, Open polls
// until one appears or ctx is canceled.
func Open(ctx context.Context) (*Transport, error) {
	gctx := gousb.NewContext()

	for {
		t, err := tryOpen(gctx)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, ErrNoDevice) {
			gctx.Close()
			return nil, err
		}

		select {
		case <-ctx.Done():
			gctx.Close()
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func tryOpen(gctx *gousb.Context) (*Transport, error) {
	devs, err := gctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(vendorID) && desc.Product == gousb.ID(productID)
	})
	if err != nil {
		return nil, errors.Wrap(err, "transport: enumerate devices")
	}
	if len(devs) == 0 {
		return nil, ErrNoDevice
	}

	dev := devs[0]
	for _, extra := range devs[1:] {
		extra.Close()
	}

	closeOnErr := true
	defer func() {
		if closeOnErr {
			dev.Close()
		}
	}()

	cfgNum, err := dev.ActiveConfigNum()
	if err != nil {
		return nil, errors.Wrap(err, "transport: read active config")
	}

	cfg, err := dev.Config(cfgNum)
	if err != nil {
		return nil, errors.Wrap(err, "transport: claim config")
	}

	var (
		intf      *gousb.Interface
		outEp     *gousb.OutEndpoint
		inEp      *gousb.InEndpoint
		outMaxPkt int
		inMaxPkt  int
	)

	configDesc := dev.Desc.Configs[cfgNum]
	for _, ifDesc := range configDesc.Interfaces {
		alt := ifDesc.AltSettings[0]
		if int(alt.Class) != ifaceClass || int(alt.SubClass) != ifaceSubclass {
			continue
		}
		if !validProtocol(int(alt.Protocol)) {
			continue
		}

		var outNum, inNum int
		var outSize, inSize int
		for _, ep := range alt.Endpoints {
			if ep.TransferType != gousb.TransferTypeBulk {
				continue
			}
			if ep.Direction == gousb.EndpointDirectionIn {
				inNum = int(ep.Number)
				inSize = ep.MaxPacketSize
			} else {
				outNum = int(ep.Number)
				outSize = ep.MaxPacketSize
			}
		}
		if outSize == 0 || inSize == 0 {
			continue
		}

		candidate, err := cfg.Interface(ifDesc.Number, alt.Alternate)
		if err != nil {
			continue
		}

		o, err := candidate.OutEndpoint(outNum)
		if err != nil {
			candidate.Close()
			continue
		}
		in, err := candidate.InEndpoint(inNum)
		if err != nil {
			candidate.Close()
			continue
		}

		intf = candidate
		outEp, inEp = o, in
		outMaxPkt, inMaxPkt = outSize, inSize
		break
	}

	if intf == nil {
		cfg.Close()
		return nil, ErrNoDevice
	}

	closeOnErr = false
	return &Transport{
		ctx:       gctx,
		dev:       dev,
		cfg:       cfg,
		intf:      intf,
		out:       outEp,
		in:        inEp,
		outMaxPkt: outMaxPkt,
		inMaxPkt:  inMaxPkt,
	}, nil
}

// Close releases the USB interface, config, device and context.
func (t *Transport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if t.intf != nil {
		t.intf.Close()
	}
	if t.cfg != nil {
		t.cfg.Close()
	}
	if t.dev != nil {
		t.dev.Close()
	}
	if t.ctx != nil {
		t.ctx.Close()
	}
	return nil
}

// OutMaxPacketSize returns the bulk OUT endpoint's max packet size, used by
// Write's chunking and by the ZLP-on-EOT rule.
func (t *Transport) OutMaxPacketSize() int {
	return t.outMaxPkt
}

// Read performs one bulk read of at most len(buf) bytes from the input
// endpoint, bounded by timeout. A zero-length packet is a valid, non-error
// read of 0 bytes.
func (t *Transport) Read(buf []byte, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	n, err := t.in.ReadContext(ctx, buf)
	if err != nil {
		if ctx.Err() != nil {
			return n, ErrTimeout
		}
		return n, errors.Wrap(err, "transport: bulk read")
	}
	return n, nil
}

// Write sends buf as a sequence of bulk OUT transfers, each at most
// OutMaxPacketSize() bytes. If eot is true and len(buf) is a non-zero
// multiple of the max packet size, an extra zero-length transfer is
// appended to force end-of-transfer signalling. An empty write with
// eot==true degenerates to a single ZLP.
func (t *Transport) Write(buf []byte, eot bool) (int, error) {
	if len(buf) == 0 {
		if !eot {
			return 0, nil
		}
		return t.writeChunk(nil)
	}

	written := 0
	mps := t.outMaxPkt
	for written < len(buf) {
		end := written + mps
		if end > len(buf) {
			end = len(buf)
		}
		chunk := buf[written:end]
		n, err := t.writeChunk(chunk)
		written += n
		if err != nil {
			return written, err
		}
		if n != len(chunk) {
			return written, ErrShortTransfer
		}
	}

	if eot && mps > 0 && len(buf)%mps == 0 {
		if _, err := t.writeChunk(nil); err != nil {
			return written, err
		}
	}

	return written, nil
}

func (t *Transport) writeChunk(buf []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	n, err := t.out.WriteContext(ctx, buf)
	if err != nil {
		if ctx.Err() != nil {
			return n, ErrTimeout
		}
		return n, errors.Wrap(err, "transport: bulk write")
	}
	return n, nil
}
