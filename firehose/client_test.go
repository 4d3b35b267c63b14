package firehose

import "testing"

func TestConfigureRenegotiation(t *testing.T) {
	// First configure proposes the default 1048576. Target ACKs but
	// supports a larger size, so a second configure is expected with that
	// value; the second ACK matches what was proposed and ends the dance.
	first := []byte(`<?xml version="1.0"?><data><response value="ACK" MaxPayloadSizeToTargetInBytes="1048576" MaxPayloadSizeToTargetInBytesSupported="8388608"/></data>`)
	second := []byte(`<?xml version="1.0"?><data><response value="ACK" MaxPayloadSizeToTargetInBytes="8388608"/></data>`)

	ft := &fakeTransport{reads: [][]byte{first, second}}
	c := NewClient(ft)

	if err := c.Configure(false, "ufs"); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if c.MaxPayloadSize != 8388608 {
		t.Errorf("MaxPayloadSize = %d, want 8388608", c.MaxPayloadSize)
	}
	if len(ft.writes) != 2 {
		t.Fatalf("writes = %d, want 2 (renegotiated)", len(ft.writes))
	}
}

func TestConfigureNoRenegotiationNeeded(t *testing.T) {
	ack := []byte(`<?xml version="1.0"?><data><response value="ACK" MaxPayloadSizeToTargetInBytes="1048576"/></data>`)
	ft := &fakeTransport{reads: [][]byte{ack}}
	c := NewClient(ft)

	if err := c.Configure(false, "ufs"); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if c.MaxPayloadSize != DefaultMaxPayloadSize {
		t.Errorf("MaxPayloadSize = %d, want default %d", c.MaxPayloadSize, DefaultMaxPayloadSize)
	}
	if len(ft.writes) != 1 {
		t.Fatalf("writes = %d, want 1 (no renegotiation)", len(ft.writes))
	}
}

func TestConfigureNAKIsError(t *testing.T) {
	nak := []byte(`<?xml version="1.0"?><data><response value="NAK"/></data>`)
	ft := &fakeTransport{reads: [][]byte{nak}}
	c := NewClient(ft)

	if err := c.Configure(false, "ufs"); err == nil {
		t.Fatal("Configure: want error on NAK")
	}
}
