package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// workDirPrefix marks engine work directories so stale ones from crashed
// runs can be swept on startup.
const workDirPrefix = "wordpdf-engine-"

// LibreOffice drives soffice in headless mode. Every instance gets its
// own user profile directory: soffice refuses concurrent runs sharing a
// profile, and an isolated profile per worker is what makes parallel
// conversions safe.
type LibreOffice struct {
	binary       string
	workRoot     string
	startTimeout time.Duration
	logger       *zap.Logger
}

func NewLibreOffice(binary, workRoot string, startTimeout time.Duration, logger *zap.Logger) *LibreOffice {
	return &LibreOffice{
		binary:       binary,
		workRoot:     workRoot,
		startTimeout: startTimeout,
		logger:       logger.With(zap.String("component", "engine")),
	}
}

// Start verifies the binary launches and prepares an isolated work
// directory for the new instance.
func (lo *LibreOffice) Start(ctx context.Context) (Instance, error) {
	bin, err := exec.LookPath(lo.binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found in PATH", ErrEngineUnavailable, lo.binary)
	}

	work, err := os.MkdirTemp(lo.workRoot, workDirPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: create work directory: %v", ErrEngineUnavailable, err)
	}

	in := &instance{bin: bin, work: work, logger: lo.logger}

	startCtx, cancel := context.WithTimeout(ctx, lo.startTimeout)
	defer cancel()

	cmd := exec.CommandContext(startCtx, bin, in.profileArg(), "--headless", "--version")
	if out, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(work)
		return nil, fmt.Errorf("%w: %v: %s", ErrEngineUnavailable, err, trimOutput(out))
	}

	lo.logger.Info("Engine instance started", zap.String("work_dir", work))
	return in, nil
}

type instance struct {
	bin    string
	work   string
	logger *zap.Logger
}

func (in *instance) profileArg() string {
	return "-env:UserInstallation=file://" + filepath.Join(in.work, "profile")
}

func (in *instance) Convert(ctx context.Context, source, target string) error {
	if holder, locked := lockFileFor(source); locked {
		return fmt.Errorf("%w: %s", ErrSourceLocked, holder)
	}

	outDir := filepath.Join(in.work, "out")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create engine output directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, in.bin,
		in.profileArg(),
		"--headless", "--norestore", "--convert-to", "pdf",
		"--outdir", outDir, source)

	out, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ConversionError{Source: source, Output: trimOutput(out)}
	}

	// soffice names the result after the source; move it onto the claimed
	// target path. The rename is the atomic "export" from the batch
	// layer's point of view.
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	produced := filepath.Join(outDir, stem+".pdf")
	if _, err := os.Stat(produced); err != nil {
		return &ConversionError{Source: source, Output: "engine produced no output: " + trimOutput(out)}
	}
	if err := moveFile(produced, target); err != nil {
		return fmt.Errorf("move converted file to %s: %w", target, err)
	}
	return nil
}

// moveFile renames produced onto target. The work directory often lives
// on a different filesystem than the output directory (tmpfs /tmp is
// the usual case), where rename fails with EXDEV; then the file is
// copied into the target directory under a temporary name and renamed
// into place, so it still appears at target all at once.
func moveFile(produced, target string) error {
	err := os.Rename(produced, target)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	return copyAcrossDevices(produced, target)
}

func copyAcrossDevices(produced, target string) error {
	src, err := os.Open(produced)
	if err != nil {
		return err
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(target), ".convert-*")
	if err != nil {
		return err
	}
	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	if _, err := io.Copy(tmp, src); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Remove(produced)
}

func (in *instance) Stop() {
	if in.work == "" {
		return
	}
	if err := os.RemoveAll(in.work); err != nil {
		in.logger.Warn("Error removing engine work directory",
			zap.String("work_dir", in.work),
			zap.Error(err))
	}
	in.work = ""
}

// lockFileFor reports whether a lock-file sibling of source exists.
// LibreOffice leaves ".~lock.<name>#" next to open documents; Word leaves
// "~$" owner files, dropping the first characters of long names.
func lockFileFor(source string) (string, bool) {
	dir := filepath.Dir(source)
	base := filepath.Base(source)

	candidates := []string{
		".~lock." + base + "#",
		"~$" + base,
	}
	if len(base) > 2 {
		candidates = append(candidates, "~$"+base[2:])
	}

	for _, name := range candidates {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return name, true
		}
	}
	return "", false
}
