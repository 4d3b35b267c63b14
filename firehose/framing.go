// Package firehose implements the host side of Qualcomm's Firehose
// protocol: a line-oriented XML request/response protocol layered over the
// same USB bulk transport Sahara used to deliver the bootstrap loader.
package firehose

import (
	"bytes"
	"encoding/xml"
	"io"
	"time"

	"github.com/JoshuaDoes/qdl/internal/qlog"
	"github.com/pkg/errors"
)

// Transport is the narrow contract Client needs from the USB bulk
// transport, mirroring sahara.Transport; transport.Transport satisfies it
// structurally.
type Transport interface {
	Read(buf []byte, timeout time.Duration) (int, error)
	Write(buf []byte, eot bool) (int, error)
}

const (
	readBufSize         = 4096
	firstReadTimeout     = 1000 * time.Millisecond
	followupReadTimeout  = 100 * time.Millisecond
	drainReadTimeout     = time.Millisecond
)

var dataTerminator = []byte("</data>")

// Response is a decoded <response value="ACK|NAK" .../> element. Attrs
// holds every attribute other than "value", keyed by local name.
type Response struct {
	Value string
	Attrs map[string]string
}

// ResponseParser inspects a decoded <response> element and returns the
// command-specific result value. Per spec.md's contract, a zero result
// with a nil error means ACK; any error propagates as the command's
// failure.
type ResponseParser func(Response) (int, error)

// Debug, when true, hex-dumps outbound and inbound Firehose XML to stderr
// via qlog, matching original_source/firehose.cpp's qdl_debug gate.
var Debug bool

// read drains inbound Firehose packets until a response has been seen and
// a subsequent read times out, or (when parser is nil) until the channel
// goes quiet. wait <= 0 selects "command" mode: the first read waits up to
// 1000ms and does not step down except after a response arrives. wait > 0
// selects "drain" mode: the first read waits up to wait, later reads step
// down to 100ms, and the loop runs until transport read times out (parser
// is expected to be nil in this mode).
func read(t Transport, wait time.Duration, parser ResponseParser) (int, error) {
	timeout := firstReadTimeout
	if wait > 0 {
		timeout = wait
	}

	done := false
	result := 0
	var resultErr error
	buf := make([]byte, readBufSize)

	for {
		n, err := t.Read(buf, timeout)
		if err != nil {
			if done {
				break
			}
			return 0, errors.Wrap(err, "firehose: read")
		}

		msg := buf[:n]
		if Debug && n > 0 {
			qlog.L().Debugf("FIREHOSE READ: %x", msg)
		}

		for len(msg) > 0 {
			idx := bytes.Index(msg, dataTerminator)
			if idx < 0 {
				return 0, ErrTruncatedPacket
			}
			end := idx + len(dataTerminator)
			packet := msg[:end]
			msg = msg[end:]

			logs, responses, err := decodePacket(packet)
			if err != nil {
				return 0, err
			}
			for _, l := range logs {
				qlog.L().Infof("LOG: %s", l)
			}
			for _, r := range responses {
				if parser == nil {
					continue
				}
				result, resultErr = parser(r)
				done = true
				timeout = drainReadTimeout
			}
		}

		if !done && wait > 0 {
			timeout = followupReadTimeout
		}
	}

	return result, resultErr
}

// write serializes root as a <?xml version="1.0"?><data>...</data>
// document and sends it as a single bulk transfer with eot=true.
func write(t Transport, root xmlElement) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<data>\n")
	if err := root.encodeTo(&buf); err != nil {
		return err
	}
	buf.WriteString("</data>\n")

	if Debug {
		qlog.L().Debugf("FIREHOSE WRITE: %x", buf.Bytes())
	}

	_, err := t.Write(buf.Bytes(), true)
	if err != nil {
		return errors.Wrap(err, "firehose: write")
	}
	return nil
}

// xmlElement is a single self-closing Firehose command tag, written with
// stable attribute order so tests and --debug traces are reproducible.
type xmlElement struct {
	Name  string
	Attrs []xml.Attr
}

func newElement(name string) *xmlElement {
	return &xmlElement{Name: name}
}

func (e *xmlElement) set(name, value string) *xmlElement {
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	return e
}

func (e xmlElement) encodeTo(w io.Writer) error {
	enc := xml.NewEncoder(w)
	tok := xml.StartElement{Name: xml.Name{Local: e.Name}, Attr: e.Attrs}
	if err := enc.EncodeToken(tok); err != nil {
		return err
	}
	if err := enc.EncodeToken(tok.End()); err != nil {
		return err
	}
	return enc.Flush()
}

// decodedLog and decodedResponse mirror the wire shape of the two element
// kinds Firehose ever sends back inside <data>.
type decodedLog struct {
	Value string `xml:"value,attr"`
}

type decodedResponse struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

func decodePacket(packet []byte) ([]string, []Response, error) {
	dec := xml.NewDecoder(bytes.NewReader(packet))

	var logs []string
	var responses []Response
	depth := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrap(err, "firehose: malformed packet")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth != 2 {
				continue
			}
			switch t.Name.Local {
			case "log":
				var l decodedLog
				if err := dec.DecodeElement(&l, &t); err != nil {
					return nil, nil, errors.Wrap(err, "firehose: malformed log element")
				}
				logs = append(logs, l.Value)
				depth--
			case "response":
				resp := Response{Attrs: map[string]string{}}
				var raw decodedResponse
				if err := dec.DecodeElement(&raw, &t); err != nil {
					return nil, nil, errors.Wrap(err, "firehose: malformed response element")
				}
				for _, a := range raw.Attrs {
					if a.Name.Local == "value" {
						resp.Value = a.Value
						continue
					}
					resp.Attrs[a.Name.Local] = a.Value
				}
				responses = append(responses, resp)
				depth--
			default:
				if err := dec.Skip(); err != nil {
					return nil, nil, err
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	if len(logs) == 0 && len(responses) == 0 {
		return nil, nil, ErrMalformedPacket
	}
	return logs, responses, nil
}

// nopParser is the default parser used by commands that only need to know
// whether the target ACKed, matching original_source/firehose.cpp's
// firehose_nop_parser.
func nopParser(resp Response) (int, error) {
	if resp.Value != "ACK" {
		return 0, errors.Wrapf(ErrNAK, "response value %q", resp.Value)
	}
	return 0, nil
}
