package files

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// LocationPolicy limits which blob locations a user may register. The zero
// value rejects everything.
type LocationPolicy struct {
	// Bucket and Prefix name the uploads area; s3 keys must sit under
	// <Prefix>/<userID>/.
	Bucket string
	Prefix string
	// Hosts lists the http(s) hosts blobs may be fetched from. An entry
	// starting with "." also matches its subdomains.
	Hosts []string
	// AllowFile admits file:// locations, for local development only.
	AllowFile bool
}

// Check returns an ErrInvalidInput error unless loc is readable by userID.
func (p LocationPolicy) Check(loc *url.URL, userID string) error {
	if loc.User != nil {
		return fmt.Errorf("%w: path must not carry credentials", ErrInvalidInput)
	}
	switch strings.ToLower(loc.Scheme) {
	case "s3":
		return p.checkS3(loc, userID)
	case "http", "https":
		if !p.hostAllowed(loc.Hostname()) {
			return fmt.Errorf("%w: host %q is not an allowed blob host", ErrInvalidInput, loc.Hostname())
		}
		return nil
	case "file":
		if !p.AllowFile {
			return fmt.Errorf("%w: file locations are disabled", ErrInvalidInput)
		}
		return nil
	}
	return fmt.Errorf("%w: unsupported location scheme %q", ErrInvalidInput, loc.Scheme)
}

func (p LocationPolicy) checkS3(loc *url.URL, userID string) error {
	bucket := strings.TrimSpace(p.Bucket)
	if bucket == "" || loc.Host != bucket {
		return fmt.Errorf("%w: path must be in the uploads bucket", ErrInvalidInput)
	}
	if strings.Contains(userID, "/") {
		return fmt.Errorf("%w: path must be under the caller's upload prefix", ErrInvalidInput)
	}
	owner := path.Join(strings.Trim(strings.TrimSpace(p.Prefix), "/"), userID) + "/"
	key := strings.TrimLeft(path.Clean("/"+loc.Path), "/")
	if !strings.HasPrefix(key, owner) || key == owner {
		return fmt.Errorf("%w: path must be under the caller's upload prefix", ErrInvalidInput)
	}
	return nil
}

func (p LocationPolicy) hostAllowed(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return false
	}
	for _, allowed := range p.Hosts {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		switch {
		case allowed == "":
		case strings.HasPrefix(allowed, "."):
			if strings.HasSuffix(host, allowed) {
				return true
			}
		case host == allowed:
			return true
		}
	}
	return false
}
