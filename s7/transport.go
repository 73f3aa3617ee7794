package s7

import (
	"io"
	"net"
	"strconv"
	"time"
)

const (
	defaultS7Port   = 102
	defaultPDULen   = 480
	tpktVersion     = 3
	tpktHeaderSize  = 4
	maxTPKTFrameLen = 4096
)

// ConnectionClass is the COTP source-TSAP class negotiated at connect time.
type ConnectionClass byte

const (
	ClassPG    ConnectionClass = 1
	ClassOP    ConnectionClass = 2
	ClassBasic ConnectionClass = 3
)

// TransportOptions configures a Transport's connection handshake.
type TransportOptions struct {
	Address            string
	Rack               int
	Slot               int
	ConnectionClass     ConnectionClass
	RequestedPDULength uint16
	ConnectTimeout     time.Duration
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
}

// Transport is the synchronous request/response channel over one
// established ISO-on-TCP session. It performs a single COTP connect and a
// single PDU negotiation, then exposes send as the sole suspension point.
// It is not safe for concurrent use: callers must not interleave requests.
type Transport struct {
	opts      TransportOptions
	conn      net.Conn
	pduLen    uint16
	connected bool
}

// NewTransport constructs a Transport from the given options, applying
// documented defaults for any zero-valued field.
func NewTransport(opts TransportOptions) *Transport {
	if opts.ConnectionClass == 0 {
		opts.ConnectionClass = ClassPG
	}
	if opts.RequestedPDULength == 0 {
		opts.RequestedPDULength = defaultPDULen
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	return &Transport{opts: opts}
}

// Dial opens the TCP socket, performs the COTP connect handshake, and
// negotiates a PDU size, closing the socket if either handshake step fails.
func (t *Transport) Dial() error {
	if err := t.connectTCP(); err != nil {
		return err
	}
	if err := t.cotpConnect(); err != nil {
		t.Close()
		return err
	}
	if err := t.Negotiate(); err != nil {
		t.Close()
		return err
	}
	return nil
}

func (t *Transport) connectTCP() error {
	addr := t.opts.Address
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, strconv.Itoa(defaultS7Port))
	}
	conn, err := net.DialTimeout("tcp", addr, t.opts.ConnectTimeout)
	if err != nil {
		return newIOError(err)
	}
	t.conn = conn
	debugf("s7: tcp connected to %s", addr)
	return nil
}

// cotpConnect performs the ISO connection request/confirm handshake,
// patching the source and destination TSAPs into a copy of the template.
func (t *Transport) cotpConnect() error {
	req := isoConnectionRequestTelegram
	req[16] = byte(t.opts.ConnectionClass)
	req[17] = 0
	req[20] = 0x01
	req[21] = byte(t.opts.Rack<<5 | t.opts.Slot)

	if err := t.writeFrame(req[:]); err != nil {
		return err
	}
	resp, err := t.readFrame()
	if err != nil {
		return err
	}
	if len(resp) < 6 || resp[5] != confirmConnection {
		return &Error{Kind: KindIso, Message: "COTP connect confirm not received", Bytes: resp}
	}
	debugf("s7: COTP connected (rack=%d slot=%d)", t.opts.Rack, t.opts.Slot)
	return nil
}

// Negotiate performs the PDU-size negotiation telegram and stores the
// server-advertised PDU length.
func (t *Transport) Negotiate() error {
	req := pduNegotiationTelegram
	putBEUint16(req[:], pduNegotiationRequestedLenOffset, t.opts.RequestedPDULength)

	resp, err := t.Send(req[:])
	if err != nil {
		return err
	}
	if len(resp) < pduNegotiationResponseLenOffset+2 {
		return &Error{Kind: KindPduLength, Message: "negotiate response too short", Bytes: resp}
	}
	pduLen := beUint16(resp, pduNegotiationResponseLenOffset)
	if pduLen == 0 {
		return &Error{Kind: KindPduLength, Message: "server negotiated zero PDU length"}
	}
	t.pduLen = pduLen
	t.connected = true
	debugf("s7: negotiated PDU length %d", pduLen)
	return nil
}

// Send writes a complete request frame and returns the complete response
// frame (TPKT header included). Callers must not call Send concurrently.
func (t *Transport) Send(request []byte) ([]byte, error) {
	if err := t.writeFrame(request); err != nil {
		return nil, err
	}
	return t.readFrame()
}

// PDULength returns the negotiated PDU size, or 0 if not yet negotiated.
func (t *Transport) PDULength() uint16 { return t.pduLen }

// IsConnected reports whether the handshake has completed successfully.
func (t *Transport) IsConnected() bool { return t.connected }

func (t *Transport) writeFrame(data []byte) error {
	if t.conn == nil {
		return &Error{Kind: KindIO, Message: "not connected"}
	}
	if t.opts.WriteTimeout > 0 {
		t.conn.SetWriteDeadline(time.Now().Add(t.opts.WriteTimeout))
	}
	if _, err := t.conn.Write(data); err != nil {
		return newIOError(err)
	}
	return nil
}

func (t *Transport) readFrame() ([]byte, error) {
	if t.conn == nil {
		return nil, &Error{Kind: KindIO, Message: "not connected"}
	}
	if t.opts.ReadTimeout > 0 {
		t.conn.SetReadDeadline(time.Now().Add(t.opts.ReadTimeout))
	}
	header := make([]byte, tpktHeaderSize)
	if _, err := io.ReadFull(t.conn, header); err != nil {
		return nil, newIOError(err)
	}
	if header[0] != tpktVersion {
		return nil, &Error{Kind: KindIso, Message: "unexpected TPKT version", Bytes: header}
	}
	total := int(beUint16(header, 2))
	if total < tpktHeaderSize || total > maxTPKTFrameLen {
		return nil, &Error{Kind: KindIso, Message: "invalid TPKT length", Bytes: header}
	}
	rest := make([]byte, total-tpktHeaderSize)
	if len(rest) > 0 {
		if _, err := io.ReadFull(t.conn, rest); err != nil {
			return nil, newIOError(err)
		}
	}
	return append(header, rest...), nil
}

// Close releases the underlying socket. It is safe to call multiple times.
func (t *Transport) Close() error {
	t.connected = false
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
