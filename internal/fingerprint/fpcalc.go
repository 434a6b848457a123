package fingerprint

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/fhinkel/music-janitor-core/internal/apperr"
)

var errNoFingerprintOutput = errors.New("fpcalc produced no FINGERPRINT= line")

// FpcalcLengthSec is how many seconds of audio fpcalc analyzes, grounded on
// the chromaprint-tools default used by comparable fingerprint scanners.
const FpcalcLengthSec = 120

// FpcalcTimeout bounds a single fpcalc invocation so one slow/corrupt file
// doesn't stall the generator.
var FpcalcTimeout = 30 * time.Second

var bundledFpcalcDirEnv = "MJANITOR_FPCALC_DIR"

// ResolvePath locates the fpcalc binary. When MJANITOR_FPCALC_DIR is set,
// it first tries <dir>/<GOOS>_<GOARCH>/fpcalc; otherwise, or when that file
// is absent, it falls back to a PATH lookup. There is no built-in bundled
// binary and nothing is extracted to a temp directory.
func ResolvePath() (string, error) {
	if dir := os.Getenv(bundledFpcalcDirEnv); dir != "" {
		name := "fpcalc"
		if runtime.GOOS == "windows" {
			name = "fpcalc.exe"
		}
		candidate := filepath.Join(dir, runtime.GOOS+"_"+runtime.GOARCH, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			if runtime.GOOS != "windows" {
				_ = os.Chmod(candidate, 0o755)
			}
			return candidate, nil
		}
	}
	path, err := exec.LookPath("fpcalc")
	if err != nil {
		return "", apperr.FpcalcUnavailable("fingerprint.ResolvePath", err)
	}
	return path, nil
}

// Available reports whether fpcalc can be located at all.
func Available() bool {
	_, err := ResolvePath()
	return err == nil
}

// Result is a freshly computed fingerprint.
type Result struct {
	DurationSec int
	Fingerprint string // comma-separated, ready for catalog.Track.Fingerprint
}

// Generate invokes fpcalc on path and parses its raw output. Grounded on
// the "fpcalc -raw -length N" invocation and DURATION=/FINGERPRINT= line
// parsing used by comparable chromaprint-backed duplicate scanners.
func Generate(ctx context.Context, fpcalcPath, path string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, FpcalcTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, fpcalcPath, "-raw", "-length", strconv.Itoa(FpcalcLengthSec), path)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperr.Cancelled("fingerprint.Generate")
		}
		return nil, apperr.ExtractionFailure("fingerprint.Generate", err)
	}

	var durationSec int
	var rawFingerprint string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "DURATION="):
			s := strings.TrimPrefix(line, "DURATION=")
			if idx := strings.Index(s, "."); idx >= 0 {
				s = s[:idx]
			}
			durationSec, _ = strconv.Atoi(s)
		case strings.HasPrefix(line, "FINGERPRINT="):
			rawFingerprint = normalizeFingerprintLine(strings.TrimPrefix(line, "FINGERPRINT="))
		}
	}
	if rawFingerprint == "" {
		return nil, apperr.ExtractionFailure("fingerprint.Generate", errNoFingerprintOutput)
	}
	return &Result{DurationSec: durationSec, Fingerprint: rawFingerprint}, nil
}

// normalizeFingerprintLine rewrites fpcalc's raw token separators to the
// comma-separated form spec §4.5/§3 expects for storage.
func normalizeFingerprintLine(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' })
	return strings.Join(fields, ",")
}
