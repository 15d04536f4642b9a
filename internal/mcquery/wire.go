package mcquery

import (
	"errors"
	"fmt"
	"io"
	"net"
)

// maxPayload caps the status payload we will buffer. Real responses
// are a few KB of JSON plus an optional favicon.
const maxPayload = 1 << 20

// appendVarInt encodes v as the protocol's unsigned-LEB128 of the
// two's-complement int32.
func appendVarInt(dst []byte, v int32) []byte {
	u := uint32(v)
	for {
		b := byte(u & 0x7f)
		u >>= 7
		if u != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
		if u == 0 {
			return dst
		}
	}
}

// readVarInt decodes a VarInt, rejecting encodings longer than the
// protocol's five-byte maximum.
func readVarInt(r io.ByteReader) (int32, error) {
	var result uint32
	for i := 0; i < 5; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return int32(result), nil
		}
	}
	return 0, errors.New("varint too long")
}

// writeFrame sends one length-prefixed packet.
func writeFrame(conn net.Conn, body []byte) error {
	frame := appendVarInt(nil, int32(len(body)))
	frame = append(frame, body...)
	_, err := conn.Write(frame)
	return err
}

// readStatusResponse reads the framed status packet and returns its
// JSON payload.
func readStatusResponse(r interface {
	io.Reader
	io.ByteReader
}) ([]byte, error) {
	frameLen, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	if frameLen <= 0 || frameLen > maxPayload {
		return nil, fmt.Errorf("bad frame length %d", frameLen)
	}
	packetID, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	if packetID != 0x00 {
		return nil, fmt.Errorf("unexpected packet id 0x%02x", packetID)
	}
	strLen, err := readVarInt(r)
	if err != nil {
		return nil, err
	}
	if strLen < 0 || strLen > maxPayload {
		return nil, fmt.Errorf("bad payload length %d", strLen)
	}
	payload := make([]byte, strLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
