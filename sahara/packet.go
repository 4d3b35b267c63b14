// Package sahara implements the host side of Qualcomm's Sahara protocol: a
// reactive state machine that responds to target-initiated commands to
// upload a bootstrap loader image in variable-sized chunks.
package sahara

import (
	"encoding/binary"

	"github.com/JoshuaDoes/crunchio"
)

// Command ids, as sent by the target in the packet header.
const (
	CmdHello      = 0x01
	CmdHelloResp  = 0x02
	CmdRead       = 0x03
	CmdEndOfImage = 0x04
	CmdDoneReq    = 0x05
	CmdDoneResp   = 0x06
	CmdRead64     = 0x12
)

// Expected on-wire lengths for each known command, used to validate the
// header's length field against the bytes actually read.
const (
	lenHello      = 0x30
	lenRead       = 0x14
	lenRead64     = 0x20
	lenEndOfImage = 0x10
	lenDoneResp   = 0x0c
	lenDoneReq    = 0x08
)

// Packet is a decoded Sahara packet: a {cmd, length} header followed by
// command-specific fields. It exists only on the stack during one
// read-dispatch cycle, never aliased onto the raw read buffer.
type Packet struct {
	Cmd    uint32
	Length uint32
	Body   []byte
}

// DecodePacket parses the header and retains the remaining bytes as Body for
// command-specific decoding. It does not validate Length against len(buf);
// callers compare that against the number of bytes actually read off the
// wire, per the Sahara framing invariant.
func DecodePacket(buf []byte) (Packet, error) {
	if len(buf) < 8 {
		return Packet{}, ErrFramingShort
	}
	return Packet{
		Cmd:    binary.LittleEndian.Uint32(buf[0:4]),
		Length: binary.LittleEndian.Uint32(buf[4:8]),
		Body:   buf[8:],
	}, nil
}

// HelloRequest is the body of a HELLO packet (cmd=1, length=0x30).
type HelloRequest struct {
	Version     uint32
	VersionComp uint32
	MaxLen      uint32
	Mode        uint32
}

func decodeHelloRequest(body []byte) HelloRequest {
	return HelloRequest{
		Version:     binary.LittleEndian.Uint32(body[0:4]),
		VersionComp: binary.LittleEndian.Uint32(body[4:8]),
		MaxLen:      binary.LittleEndian.Uint32(body[8:12]),
		Mode:        binary.LittleEndian.Uint32(body[12:16]),
	}
}

// encodeHelloResponse builds the {cmd=2, length=0x30, hello_resp{...}} reply.
// The total on-wire packet is 0x30 bytes, header included; the trailing
// bytes beyond the four named fields are reserved and left zeroed, matching
// the original hello_resp struct's padding.
func encodeHelloResponse(mode uint32) []byte {
	buf := crunchio.NewBuffer("sahara hello_resp", make([]byte, lenHello))
	b := buf.Buffer()
	b.WriteU32LE(0, []uint32{CmdHelloResp})
	b.WriteU32LE(4, []uint32{lenHello})
	b.WriteU32LE(8, []uint32{2})      // version
	b.WriteU32LE(12, []uint32{1})     // compatible
	b.WriteU32LE(16, []uint32{0})     // status
	b.WriteU32LE(20, []uint32{mode})  // echoed mode
	return buf.Bytes()
}

// ReadRequest is the body of a READ packet (cmd=3, length=0x14): 32-bit
// image/offset/length fields.
type ReadRequest struct {
	Image  uint32
	Offset uint32
	Length uint32
}

func decodeReadRequest(body []byte) ReadRequest {
	return ReadRequest{
		Image:  binary.LittleEndian.Uint32(body[0:4]),
		Offset: binary.LittleEndian.Uint32(body[4:8]),
		Length: binary.LittleEndian.Uint32(body[8:12]),
	}
}

// Read64Request is the body of a READ64 packet (cmd=0x12, length=0x20):
// 64-bit image/offset/length fields.
type Read64Request struct {
	Image  uint64
	Offset uint64
	Length uint64
}

func decodeRead64Request(body []byte) Read64Request {
	return Read64Request{
		Image:  binary.LittleEndian.Uint64(body[0:8]),
		Offset: binary.LittleEndian.Uint64(body[8:16]),
		Length: binary.LittleEndian.Uint64(body[16:24]),
	}
}

// EndOfImageRequest is the body of an END-OF-IMAGE packet (cmd=4,
// length=0x10).
type EndOfImageRequest struct {
	Image  uint32
	Status uint32
}

func decodeEndOfImageRequest(body []byte) EndOfImageRequest {
	return EndOfImageRequest{
		Image:  binary.LittleEndian.Uint32(body[0:4]),
		Status: binary.LittleEndian.Uint32(body[4:8]),
	}
}

// encodeDoneRequest builds the {cmd=5, length=0x8} reply sent after a
// successful END-OF-IMAGE: a bare header, no body.
func encodeDoneRequest() []byte {
	buf := crunchio.NewBuffer("sahara done_req", make([]byte, lenDoneReq))
	b := buf.Buffer()
	b.WriteU32LE(0, []uint32{CmdDoneReq})
	b.WriteU32LE(4, []uint32{lenDoneReq})
	return buf.Bytes()
}

// DoneResponse is the body of a DONE_RESP packet (cmd=6, length=0x0c).
type DoneResponse struct {
	Status uint32
}

func decodeDoneResponse(body []byte) DoneResponse {
	return DoneResponse{Status: binary.LittleEndian.Uint32(body[0:4])}
}
