package transport

import (
	"context"
	"io"
	"os/exec"

	"github.com/pkg/errors"
)

// cmdPipe adapts a child process's stdin/stdout into one duplex
// stream, the way the original adb client talks to a "host-side"
// peer launched as a subprocess for testing.
type cmdPipe struct {
	io.ReadCloser
	w   io.WriteCloser
	cmd *exec.Cmd
}

func (p *cmdPipe) Write(buf []byte) (int, error) { return p.w.Write(buf) }

func (p *cmdPipe) Close() error {
	rerr := p.ReadCloser.Close()
	werr := p.w.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}

func init() {
	Register("pipe", func(ctx context.Context, conf map[string]interface{}) (io.ReadWriteCloser, error) {
		var argv []string
		switch v := conf["argv"].(type) {
		case []string:
			argv = v
		case []interface{}:
			// A config file decoded by encoding/json yields []interface{}.
			for _, a := range v {
				s, ok := a.(string)
				if !ok {
					return nil, errors.New(`transport "pipe": "argv" must be a list of strings`)
				}
				argv = append(argv, s)
			}
		}
		if len(argv) == 0 {
			return nil, errors.New(`transport "pipe": missing "argv" parameter`)
		}
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, errors.Wrap(err, "opening stdout pipe")
		}
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, errors.Wrap(err, "opening stdin pipe")
		}
		if err := cmd.Start(); err != nil {
			return nil, errors.Wrapf(err, "starting %s", argv[0])
		}
		return &cmdPipe{ReadCloser: stdout, w: stdin, cmd: cmd}, nil
	})
}
