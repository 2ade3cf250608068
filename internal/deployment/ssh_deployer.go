package deployment

import (
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const defaultSSHPort = "22"

// Target is a parsed deploy destination
type Target struct {
	User       string
	Host       string
	Port       string
	RemotePath string
}

// Addr returns the host:port to dial
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, t.Port)
}

// ParseDeployURL parses user@host:path or user@host:port:path.
// Pure function: No I/O operations, fully testable with direct inputs.
func ParseDeployURL(deployURL string) (Target, error) {
	if deployURL == "" {
		return Target{}, fmt.Errorf("deploy URL is empty")
	}

	user, hostPath, ok := strings.Cut(deployURL, "@")
	if !ok || user == "" {
		return Target{}, fmt.Errorf("invalid deploy URL %q: expected user@host[:port]:path", deployURL)
	}

	host, rest, ok := strings.Cut(hostPath, ":")
	if !ok || host == "" {
		return Target{}, fmt.Errorf("invalid deploy URL %q: expected user@host[:port]:path", deployURL)
	}

	target := Target{User: user, Host: host, Port: defaultSSHPort, RemotePath: rest}

	if port, remotePath, ok := strings.Cut(rest, ":"); ok {
		if _, err := strconv.ParseUint(port, 10, 16); err != nil {
			return Target{}, fmt.Errorf("invalid port %q in deploy URL", port)
		}
		target.Port = port
		target.RemotePath = remotePath
	}

	if target.RemotePath == "" {
		return Target{}, fmt.Errorf("invalid deploy URL %q: remote path is empty", deployURL)
	}

	return target, nil
}

// Options configures an SSHDeployer
type Options struct {
	DeployURL string
	KeyFile   string
	// KnownHostsFile enables host key verification; empty skips it
	KnownHostsFile string
	Timeout        time.Duration
}

// SSHDeployer uploads rendered dashboards via SCP
type SSHDeployer struct {
	opts   Options
	target Target
	client *ssh.Client
}

// NewSSHDeployer validates the deploy URL and creates a deployer.
// The connection is opened on first upload.
func NewSSHDeployer(opts Options) (*SSHDeployer, error) {
	target, err := ParseDeployURL(opts.DeployURL)
	if err != nil {
		return nil, err
	}
	if opts.KeyFile == "" {
		opts.KeyFile = "deploy.pem"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &SSHDeployer{opts: opts, target: target}, nil
}

// Target returns the parsed destination
func (d *SSHDeployer) Target() Target {
	return d.target
}

func (d *SSHDeployer) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if d.opts.KnownHostsFile == "" {
		log.Warn().
			Str("host", d.target.Host).
			Msg("DEPLOY_KNOWN_HOSTS not set, skipping host key verification")
		return ssh.InsecureIgnoreHostKey(), nil
	}

	callback, err := knownhosts.New(d.opts.KnownHostsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load known hosts %s: %w", d.opts.KnownHostsFile, err)
	}
	return callback, nil
}

// Connect establishes the SSH connection
func (d *SSHDeployer) Connect() error {
	if d.client != nil {
		return nil
	}

	keyData, err := os.ReadFile(d.opts.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to read SSH key file %s: %w", d.opts.KeyFile, err)
	}

	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return fmt.Errorf("failed to parse SSH private key: %w", err)
	}

	hostKeyCallback, err := d.hostKeyCallback()
	if err != nil {
		return err
	}

	config := &ssh.ClientConfig{
		User:            d.target.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         d.opts.Timeout,
	}

	client, err := ssh.Dial("tcp", d.target.Addr(), config)
	if err != nil {
		return fmt.Errorf("failed to connect to SSH server %s: %w", d.target.Addr(), err)
	}
	d.client = client

	log.Info().
		Str("addr", d.target.Addr()).
		Str("user", d.target.User).
		Msg("Connected to deploy host")

	return nil
}

// Disconnect closes the SSH connection
func (d *SSHDeployer) Disconnect() error {
	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	return err
}

// DeployFile uploads localPath to the remote directory as filename
func (d *SSHDeployer) DeployFile(localPath, filename string) error {
	if _, err := scpHeader(filename, 0); err != nil {
		return err
	}

	if err := d.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	localFile, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open local file %s: %w", localPath, err)
	}
	defer localFile.Close()

	fileInfo, err := localFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat local file: %w", err)
	}
	header, err := scpHeader(filename, fileInfo.Size())
	if err != nil {
		return err
	}

	session, err := d.client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer session.Close()

	stdin, err := session.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}

	remoteFilePath := RemoteFilePath(d.target.RemotePath, filename)
	if err := session.Start("scp -t " + shellQuote(remoteFilePath)); err != nil {
		return fmt.Errorf("failed to start SCP session: %w", err)
	}

	if err := writeSCP(stdin, header, localFile); err != nil {
		return err
	}
	stdin.Close()

	if err := session.Wait(); err != nil {
		return fmt.Errorf("SCP session failed: %w", err)
	}

	log.Info().
		Str("local_path", localPath).
		Str("remote_path", remoteFilePath).
		Int64("size", fileInfo.Size()).
		Msg("Deployed dashboard via SCP")

	return nil
}

// writeSCP streams one file in SCP sink protocol framing
func writeSCP(w io.Writer, header string, content io.Reader) error {
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("failed to write SCP header: %w", err)
	}
	if _, err := io.Copy(w, content); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}
	if _, err := w.Write([]byte{0}); err != nil {
		return fmt.Errorf("failed to write SCP end marker: %w", err)
	}
	return nil
}

// scpHeader builds the C record announcing a file of the given size
func scpHeader(filename string, size int64) (string, error) {
	if filename == "" || strings.ContainsAny(filename, "/\n") {
		return "", fmt.Errorf("invalid remote filename %q", filename)
	}
	return fmt.Sprintf("C0644 %d %s\n", size, filename), nil
}

// RemoteFilePath joins the remote directory and filename with forward slashes
func RemoteFilePath(remoteDir, filename string) string {
	return path.Join(remoteDir, filename)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
