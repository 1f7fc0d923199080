package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap/zapcore"
)

// PublicAccess is the GitHubOAuth value that disables authenticated access.
const PublicAccess = "-"

var defaultOAuthCandidates = []string{"/etc/github/oauths", "/etc/github/oauth"}

// ErrProbeFailure matches every *ProbeError.
var ErrProbeFailure = errors.New("filesystem probe failed")

// ProbeError reports a filesystem existence check that failed for a reason
// other than the file being absent.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrProbeFailure) hold.
func (e *ProbeError) Is(target error) bool { return target == ErrProbeFailure }

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (e *ProbeError) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("path", e.Path)
	return nil
}

func withTrailingSlash(dir string) string {
	if strings.HasSuffix(dir, "/") {
		return dir
	}
	return dir + "/"
}

// projectPrefix is "name/" for a named project and "" otherwise.
func projectPrefix(project string) string {
	if project == "" {
		return ""
	}
	return project + "/"
}

// probeOAuth returns the first candidate that exists, or PublicAccess.
func probeOAuth(fs afero.Fs, candidates []string) (string, error) {
	for _, path := range candidates {
		_, err := fs.Stat(path)
		if err == nil {
			return path, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return "", &ProbeError{Path: path, Err: err}
	}
	return PublicAccess, nil
}
