// Package config loads the adbsync process-wide configuration file:
// the default transport to dial, the chunk-size override, and the
// optional audit-log backend to record transfers to. It mirrors the
// teacher's bsconf.json loader (cmd/bs/main.go, cmd/bs/config.go),
// generalized from a single "type" store-factory dispatch into the
// handful of top-level settings this client needs.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"

	canonicaljson "github.com/gibson042/canonicaljson-go"
	"github.com/pkg/errors"
)

// Config is the decoded contents of a config file.
type Config struct {
	// Transport names the registered transport.Factory kind ("tcp",
	// "pipe", "grpcstream") and its dial parameters, exactly the shape
	// of the teacher's per-store config map.
	Transport map[string]interface{} `json:"transport"`

	// MaxChunk overrides wire.DefaultMaxChunk when nonzero.
	MaxChunk int `json:"max_chunk,omitempty"`

	// CopyAttrs turns on restoring mtime/mode after a pull, the -a flag
	// equivalent.
	CopyAttrs bool `json:"copy_attrs,omitempty"`

	// AuditLog, if set, names an audit backend ("pglog" or
	// "sqlitelog") and its connection parameters.
	AuditLog map[string]interface{} `json:"audit_log,omitempty"`

	// StatCacheSize, if nonzero, wraps the session in a
	// tree.CachingSession holding up to this many recent remote Stat
	// results, avoiding repeat round trips when one invocation looks up
	// the same remote path more than once.
	StatCacheSize int `json:"stat_cache_size,omitempty"`
}

// Load reads and decodes the config file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening config file %s", path)
	}
	defer f.Close()

	var c Config
	dec := json.NewDecoder(f)
	dec.UseNumber()
	if err := dec.Decode(&c); err != nil {
		return nil, errors.Wrapf(err, "decoding config file %s", path)
	}
	return &c, nil
}

// Version returns a stable identifier for c's contents: the config is
// re-encoded through canonicaljson (so key order and number
// formatting can't perturb the result) and hashed with SHA-256. Audit
// records store this alongside each transfer so a fleet-wide query can
// tell which configuration produced which transfer.
func (c *Config) Version() (string, error) {
	canon, err := canonicaljson.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "canonicalizing config")
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}
