package wire

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"

	"github.com/bobg/adbsync/adbsyncerr"
)

// DentHeader is the DENT response header's four 32-bit fields, decoded
// after the leading id.
type DentHeader struct {
	Mode    uint32
	Size    uint32
	Time    uint32
	NameLen uint32
}

// StatHeader is the STAT response header's three 32-bit fields, decoded
// after the leading id.
type StatHeader struct {
	Mode uint32
	Size uint32
	Time uint32
}

// checkPath enforces invariant P2: no request carrying a path may exceed
// MaxPath bytes, and that must be caught before any bytes are written.
func checkPath(path string) error {
	if len(path) > MaxPath {
		return errors.Wrapf(adbsyncerr.ErrPathTooLong, "path %q is %d bytes", path, len(path))
	}
	return nil
}

// EncodeListReq encodes a LIST request for path.
func EncodeListReq(path string) ([]byte, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}
	return append(EncodeHeader(LIST, uint32(len(path))), path...), nil
}

// EncodeStatReq encodes a STAT request for path.
func EncodeStatReq(path string) ([]byte, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}
	return append(EncodeHeader(STAT, uint32(len(path))), path...), nil
}

// EncodeRecvReq encodes a RECV request for path.
func EncodeRecvReq(path string) ([]byte, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}
	return append(EncodeHeader(RECV, uint32(len(path))), path...), nil
}

// sendPayload formats the "path,mode" ASCII payload of a SEND request.
func sendPayload(path string, mode uint32) (string, error) {
	if err := checkPath(path); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s,%d", path, mode), nil
}

// EncodeSendReq encodes a SEND request header and payload for path and
// mode.
func EncodeSendReq(path string, mode uint32) ([]byte, error) {
	payload, err := sendPayload(path, mode)
	if err != nil {
		return nil, err
	}
	return append(EncodeHeader(SEND, uint32(len(payload))), payload...), nil
}

// EncodeData encodes a DATA frame. The caller is responsible for
// ensuring len(chunk) <= the session's configured max chunk size.
func EncodeData(chunk []byte) []byte {
	return append(EncodeHeader(DATA, uint32(len(chunk))), chunk...)
}

// EncodeDone encodes a DONE frame carrying mtime (unix seconds) as its
// length field, as used to terminate a SEND/RECV body.
func EncodeDone(mtime uint32) []byte {
	return EncodeHeader(DONE, mtime)
}

// EncodeDoneEmpty encodes the DONE frame that terminates a LIST
// transaction, whose length is always zero.
func EncodeDoneEmpty() []byte {
	return EncodeHeader(DONE, 0)
}

// EncodeQuit encodes the QUIT request.
func EncodeQuit() []byte {
	return EncodeHeader(QUIT, 0)
}

// EncodeOkay encodes the OKAY response.
func EncodeOkay() []byte {
	return EncodeHeader(OKAY, 0)
}

// EncodeFail encodes a FAIL response carrying msg.
func EncodeFail(msg string) []byte {
	return append(EncodeHeader(FAIL, uint32(len(msg))), msg...)
}

// EncodeDent encodes one DENT response: the five 32-bit fields
// (id, mode, size, time, namelen) followed by name.
func EncodeDent(mode, size, time uint32, name string) []byte {
	buf := make([]byte, 4+dentHeaderSize)
	putU32(buf[0:4], uint32(DENT))
	putU32(buf[4:8], mode)
	putU32(buf[8:12], size)
	putU32(buf[12:16], time)
	putU32(buf[16:20], uint32(len(name)))
	return append(buf, name...)
}

// DecodeDentHeader decodes the four 32-bit fields that follow a DENT
// id in the 20-byte DENT header. buf must be dentHeaderSize bytes.
func DecodeDentHeader(buf []byte) (DentHeader, error) {
	if len(buf) < dentHeaderSize {
		return DentHeader{}, errors.Wrap(adbsyncerr.ErrProtocol, "short DENT header")
	}
	h := DentHeader{
		Mode:    getU32(buf[0:4]),
		Size:    getU32(buf[4:8]),
		Time:    getU32(buf[8:12]),
		NameLen: getU32(buf[12:16]),
	}
	if h.NameLen > MaxName {
		return DentHeader{}, errors.Wrapf(adbsyncerr.ErrProtocol, "DENT name length %d exceeds %d", h.NameLen, MaxName)
	}
	return h, nil
}

// DecodeStatHeader decodes the three 32-bit fields that follow a STAT
// id in the 12-byte STAT response header. buf must be statHeaderSize
// bytes.
func DecodeStatHeader(buf []byte) (StatHeader, error) {
	if len(buf) < statHeaderSize {
		return StatHeader{}, errors.Wrap(adbsyncerr.ErrProtocol, "short STAT header")
	}
	return StatHeader{
		Mode: getU32(buf[0:4]),
		Size: getU32(buf[4:8]),
		Time: getU32(buf[8:12]),
	}, nil
}

// EncodeStatResp encodes a STAT response: the four 32-bit fields
// (id, mode, size, time).
func EncodeStatResp(mode, size, time uint32) []byte {
	buf := make([]byte, 4+statHeaderSize)
	putU32(buf[0:4], uint32(STAT))
	putU32(buf[4:8], mode)
	putU32(buf[8:12], size)
	putU32(buf[12:16], time)
	return buf
}

// EncodeSmallFileBurst packs an entire small-file SEND transaction
// (SEND header+payload, one DATA frame, DONE) into a single buffer
// suitable for one coalesced write, per §4.B's burst form. Callers must
// ensure len(data) < the session's max chunk size.
func EncodeSmallFileBurst(path string, mode uint32, data []byte, mtime uint32) ([]byte, error) {
	sendHdr, err := EncodeSendReq(path, mode)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(sendHdr) + headerSize + len(data) + headerSize)
	buf.Write(sendHdr)
	buf.Write(EncodeData(data))
	buf.Write(EncodeDone(mtime))
	return buf.Bytes(), nil
}
