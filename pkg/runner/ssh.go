package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/newtron-network/bgpprop/pkg/util"
)

const (
	defaultSSHPort    = 22
	sshConnectTimeout = 30 * time.Second
)

// SSHConfig describes how to reach a switch over SSH. At least one of
// Password and KeyFile must be set.
type SSHConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	KeyFile  string
}

// Addr returns host:port, defaulting the port to 22.
func (c SSHConfig) Addr() string {
	port := c.Port
	if port == 0 {
		port = defaultSSHPort
	}
	return c.Host + ":" + strconv.Itoa(port)
}

func (c SSHConfig) authMethods() ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if c.KeyFile != "" {
		pem, err := os.ReadFile(c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("read key %s: %w", c.KeyFile, err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("parse key %s: %w", c.KeyFile, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if c.Password != "" {
		methods = append(methods, ssh.Password(c.Password))
	}
	if len(methods) == 0 {
		return nil, errors.New("no SSH password or key configured")
	}
	return methods, nil
}

// SSH runs commands on a remote switch, one session per command.
type SSH struct {
	host   string
	client *ssh.Client
}

// DialSSH connects to the switch described by cfg.
func DialSSH(cfg SSHConfig) (*SSH, error) {
	auth, err := cfg.authMethods()
	if err != nil {
		return nil, &ExecError{Host: cfg.Host, Err: err}
	}
	config := &ssh.ClientConfig{
		User: cfg.User,
		Auth: auth,
		// Lab switches are re-imaged often; known_hosts would go stale.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         sshConnectTimeout,
	}

	addr := cfg.Addr()
	util.Logger.Warnf("SSH to %s: host key verification disabled (InsecureIgnoreHostKey)", addr)
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, &ExecError{Host: cfg.Host, Err: fmt.Errorf("SSH dial %s@%s: %w", cfg.User, addr, err)}
	}
	return &SSH{host: cfg.Host, client: client}, nil
}

// Run executes cmdline in a new session. The remote login shell parses the
// command line, so quoting is passed through untouched. If ctx is cancelled
// the session is killed.
func (s *SSH) Run(ctx context.Context, cmdline string) (Result, error) {
	if _, err := Split(cmdline); err != nil {
		return Result{}, &ExecError{Command: cmdline, Host: s.host, Err: err}
	}

	session, err := s.client.NewSession()
	if err != nil {
		return Result{}, &ExecError{Command: cmdline, Host: s.host, Err: fmt.Errorf("SSH session: %w", err)}
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Start(cmdline); err != nil {
		return Result{}, &ExecError{Command: cmdline, Host: s.host, Err: fmt.Errorf("SSH start: %w", err)}
	}

	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case <-ctx.Done():
		session.Signal(ssh.SIGKILL)
		session.Close()
		<-done
		return Result{}, &ExecError{Command: cmdline, Host: s.host, Err: ctx.Err()}
	case err = <-done:
	}

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitErr *ssh.ExitError
	var missingErr *ssh.ExitMissingError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitStatus()
	case errors.As(err, &missingErr):
		// Session dropped without a status, e.g. the daemon restart took
		// the management interface with it.
		res.ExitCode = -1
	default:
		return res, &ExecError{Command: cmdline, Host: s.host, Err: err}
	}
	return res, nil
}

// Host returns the remote host name.
func (s *SSH) Host() string { return s.host }

// Close closes the SSH connection.
func (s *SSH) Close() error {
	return s.client.Close()
}
