package git

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// authFor picks credentials for url: the ssh agent or a key file for ssh
// remotes, the token for https remotes, nothing otherwise.
func authFor(url, token string) transport.AuthMethod {
	ep, err := transport.NewEndpoint(url)
	if err != nil {
		return nil
	}

	switch ep.Protocol {
	case "ssh":
		return sshAuth(ep.User)
	case "http", "https":
		if token == "" {
			token = os.Getenv("GITHUB_TOKEN")
		}
		if token == "" {
			return nil
		}
		return &http.BasicAuth{Username: "x-access-token", Password: token}
	default:
		return nil
	}
}

func sshAuth(user string) transport.AuthMethod {
	if user == "" {
		user = "git"
	}

	if os.Getenv("SSH_AUTH_SOCK") != "" {
		if auth, err := ssh.NewSSHAgentAuth(user); err == nil {
			return auth
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	for _, name := range []string{"id_ed25519", "id_ecdsa", "id_rsa"} {
		keyPath := filepath.Join(home, ".ssh", name)
		if _, err := os.Stat(keyPath); err != nil {
			continue
		}
		if auth, err := ssh.NewPublicKeysFromFile(user, keyPath, ""); err == nil {
			return auth
		}
	}
	return nil
}
