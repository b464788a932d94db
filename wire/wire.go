// Package wire implements the framing and message encoding for the sync
// protocol: a fixed (id, length) header followed by a kind-dependent
// payload, all integers little-endian, as described at
// https://android.googlesource.com/platform/system/core/+/master/adb/SYNC.TXT
// and reproduced here for a generic remote-filesystem service rather
// than adb specifically.
package wire

import (
	"encoding/binary"
)

// ID identifies a message kind on the wire.
type ID uint32

// Message ids. STAT, DATA and DONE appear in both directions; the
// others are one-way as documented on each constant.
const (
	// LIST is a client->server request to list a remote directory.
	LIST ID = iota + 1
	// STAT is a client->server request (and, on the wire from the
	// server, a response) carrying file metadata.
	STAT
	// RECV is a client->server request to stream a remote file down.
	RECV
	// SEND is a client->server request to begin streaming a file up.
	SEND
	// DATA carries a chunk of file content, in either direction.
	DATA
	// DONE terminates a LIST stream (length=0) or a SEND/RECV body
	// (length=mtime).
	DONE
	// QUIT is a client->server request to end the session.
	QUIT
	// DENT is a server->client directory-entry response.
	DENT
	// OKAY is a server->client acknowledgement.
	OKAY
	// FAIL is a server->client error response carrying a message.
	FAIL
)

func (id ID) String() string {
	switch id {
	case LIST:
		return "LIST"
	case STAT:
		return "STAT"
	case RECV:
		return "RECV"
	case SEND:
		return "SEND"
	case DATA:
		return "DATA"
	case DONE:
		return "DONE"
	case QUIT:
		return "QUIT"
	case DENT:
		return "DENT"
	case OKAY:
		return "OKAY"
	case FAIL:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// Protocol constants, per the design's External Interfaces section.
const (
	// MaxPath is the largest path length, in bytes, allowed in a
	// request carrying one.
	MaxPath = 1024

	// MaxName is the largest DENT name length, in bytes.
	MaxName = 256

	// DefaultMaxChunk is the default ceiling on a DATA payload. It may
	// be configured downward at runtime but never upward without
	// negotiation with the peer.
	DefaultMaxChunk = 64 * 1024

	// headerSize is the size in bytes of the generic (id, length) header.
	headerSize = 8

	// dentHeaderSize is the size of the DENT header's four trailing
	// 32-bit fields (mode, size, time, namelen), after the id.
	dentHeaderSize = 16

	// statHeaderSize is the size of the STAT response header's three
	// trailing 32-bit fields (mode, size, time), after the id.
	statHeaderSize = 12

	// modeTypeMask isolates the file-type bits of a raw Unix st_mode,
	// i.e. S_IFMT.
	modeTypeMask = 0o170000

	modeDir = 0o040000
	modeReg = 0o100000
	modeLnk = 0o120000
)

// IsDir reports whether a raw Unix st_mode (as carried by DENT/STAT)
// denotes a directory. Wire modes are Unix st_mode values, not
// os.FileMode — the type bits live in different places in each, so
// os.FileMode(mode).IsDir() silently misclassifies every wire mode.
func IsDir(mode uint32) bool { return mode&modeTypeMask == modeDir }

// IsRegular reports whether a raw Unix st_mode denotes a regular file.
func IsRegular(mode uint32) bool { return mode&modeTypeMask == modeReg }

// IsSymlink reports whether a raw Unix st_mode denotes a symlink.
func IsSymlink(mode uint32) bool { return mode&modeTypeMask == modeLnk }

func putU32(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}

func getU32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// EncodeHeader produces the generic 8-byte (id, length) header.
func EncodeHeader(id ID, length uint32) []byte {
	buf := make([]byte, headerSize)
	putU32(buf[0:4], uint32(id))
	putU32(buf[4:8], length)
	return buf
}

// DecodeHeader parses an 8-byte header previously produced by
// EncodeHeader.
func DecodeHeader(buf []byte) (id ID, length uint32) {
	return ID(getU32(buf[0:4])), getU32(buf[4:8])
}
