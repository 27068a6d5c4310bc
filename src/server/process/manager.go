// Package process manages backend language server subprocess lifecycle:
// spawn with stdio pipes, exit monitoring, and graceful shutdown with a
// bounded grace period before force kill.
package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/datstarkey/svelte-proxy-lsp/src/internal/common"
	"github.com/datstarkey/svelte-proxy-lsp/src/internal/types"
)

// ShutdownTimeout bounds how long a backend gets to exit after the
// shutdown/exit sequence before it is force killed.
const ShutdownTimeout = 3 * time.Second

// Info holds the pipes and state of one running backend process.
type Info struct {
	Cmd             *exec.Cmd
	Stdin           io.WriteCloser
	Stdout          io.ReadCloser
	Stderr          io.ReadCloser
	StopCh          chan struct{}
	ExitCh          chan struct{} // closed by Monitor once Wait returns
	Active          bool
	IntentionalStop bool
	Backend         string
}

// ShutdownSender sends the LSP shutdown request and exit notification.
type ShutdownSender interface {
	SendShutdownRequest(ctx context.Context) error
	SendExitNotification(ctx context.Context) error
}

// Manager handles backend process lifecycle.
type Manager struct {
	logger common.Logger
}

// NewManager creates a process manager with the given logger.
func NewManager(logger common.Logger) *Manager {
	return &Manager{logger: common.OrNop(logger)}
}

// Start spawns the backend server process with stdio pipes attached.
func (m *Manager) Start(config types.ClientConfig, backend string) (*Info, error) {
	cmd := exec.Command(config.Command, config.Args...)

	if config.WorkingDir != "" {
		cmd.Dir = config.WorkingDir
	} else if wd, err := os.Getwd(); err == nil {
		cmd.Dir = wd
	}

	info := &Info{
		Cmd:     cmd,
		StopCh:  make(chan struct{}),
		ExitCh:  make(chan struct{}),
		Backend: backend,
	}

	var err error
	info.Stdin, err = cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}

	info.Stdout, err = cmd.StdoutPipe()
	if err != nil {
		info.Stdin.Close()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	info.Stderr, err = cmd.StderrPipe()
	if err != nil {
		info.Stdin.Close()
		info.Stdout.Close()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		m.Cleanup(info)
		return nil, fmt.Errorf("failed to start %s language server: %w", backend, err)
	}

	m.logger.Info("Started %s language server: PID %d", backend, cmd.Process.Pid)
	return info, nil
}

// Stop terminates a backend process: shutdown/exit sequence first, then a
// bounded wait, then force kill.
func (m *Manager) Stop(info *Info, sender ShutdownSender) error {
	if info == nil {
		return nil
	}

	info.IntentionalStop = true
	select {
	case <-info.StopCh:
	default:
		close(info.StopCh)
	}

	if sender != nil {
		m.sendShutdown(sender)
	}
	info.Active = false

	// Monitor owns the Wait call; observe its exit signal here.
	if info.Cmd != nil && info.Cmd.Process != nil {
		select {
		case <-info.ExitCh:
		case <-time.After(ShutdownTimeout):
			m.logger.Warn("%s language server did not exit within %v, force killing", info.Backend, ShutdownTimeout)
			if err := info.Cmd.Process.Kill(); err != nil {
				m.logger.Error("Failed to kill %s language server: %v", info.Backend, err)
			}
			select {
			case <-info.ExitCh:
			case <-time.After(time.Second):
			}
		}
	}

	m.Cleanup(info)
	return nil
}

// Monitor blocks until the backend process exits and invokes onExit with the
// exit error, closing StopCh so readers unwind.
func (m *Manager) Monitor(info *Info, onExit func(error)) {
	if info == nil || info.Cmd == nil || info.Cmd.Process == nil {
		if onExit != nil {
			onExit(fmt.Errorf("invalid process info"))
		}
		return
	}

	err := info.Cmd.Wait()
	if info.ExitCh != nil {
		close(info.ExitCh)
	}

	if !info.IntentionalStop {
		if err != nil && info.Active {
			m.logger.Error("%s language server crashed unexpectedly: %v", info.Backend, err)
		} else if err != nil {
			m.logger.Warn("%s language server failed to start: %v", info.Backend, err)
		} else {
			m.logger.Info("%s language server exited", info.Backend)
		}
	}

	select {
	case <-info.StopCh:
	default:
		close(info.StopCh)
	}

	if onExit != nil {
		onExit(err)
	}
}

// Cleanup closes the process pipes.
func (m *Manager) Cleanup(info *Info) {
	if info == nil {
		return
	}
	if info.Stdin != nil {
		info.Stdin.Close()
	}
	if info.Stdout != nil {
		info.Stdout.Close()
	}
	if info.Stderr != nil {
		info.Stderr.Close()
	}
}

// sendShutdown runs the polite half of shutdown: the shutdown request then
// the exit notification, each under a short deadline.
func (m *Manager) sendShutdown(sender ShutdownSender) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := sender.SendShutdownRequest(ctx); err != nil {
		m.logger.Debug("Shutdown request failed: %v", err)
	}
	if err := sender.SendExitNotification(ctx); err != nil {
		m.logger.Debug("Exit notification failed: %v", err)
	}
}
