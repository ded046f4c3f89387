package containerizer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

// defaultWinsize is the terminal size until a client-driven size exists.
var defaultWinsize = &pty.Winsize{Cols: 80, Rows: 24}

// execProcess wraps an exec.Cmd started with either plain pipes or a pty.
type execProcess struct {
	cmd     *exec.Cmd
	input   io.Writer
	outputs []Stream
	closers []io.Closer

	closeOnce sync.Once
}

func startPipes(cmd *exec.Cmd) (*execProcess, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("failed to get stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	return &execProcess{
		cmd:   cmd,
		input: stdin,
		outputs: []Stream{
			{Name: "stdout", Reader: stdout},
			{Name: "stderr", Reader: stderr},
		},
		closers: []io.Closer{stdin},
	}, nil
}

func startPTY(cmd *exec.Cmd) (*execProcess, error) {
	ptmx, err := pty.StartWithSize(cmd, defaultWinsize)
	if err != nil {
		return nil, err
	}

	return &execProcess{
		cmd:     cmd,
		input:   ptmx,
		outputs: []Stream{{Name: "tty", Reader: ptyReader{ptmx}}},
		closers: []io.Closer{ptmx},
	}, nil
}

func (p *execProcess) Input() io.Writer  { return p.input }
func (p *execProcess) Outputs() []Stream { return p.outputs }

// Wait returns the exit code. A process killed by a signal reports -1.
func (p *execProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

func (p *execProcess) Close() error {
	var errs []error
	p.closeOnce.Do(func() {
		for _, c := range p.closers {
			if err := c.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

// ptyReader turns the EIO a Linux pty master returns once the child side
// has closed into a plain EOF.
type ptyReader struct {
	f *os.File
}

func (r ptyReader) Read(b []byte) (int, error) {
	n, err := r.f.Read(b)
	if err != nil && isPTYClosed(err) {
		return n, io.EOF
	}
	return n, err
}

func isPTYClosed(err error) bool {
	var pathErr *os.PathError
	return errors.As(err, &pathErr)
}
