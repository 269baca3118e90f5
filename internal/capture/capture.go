// Package capture shells out to external tools to snapshot a URL into the
// archive directory. Each capturer owns its argv construction and deadline;
// flags reach argv only through the allow-list tables in constants.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/arkive-app/arkive/internal/constants"
	"github.com/arkive-app/arkive/internal/logger"
)

// Request describes one capture. Filename is the artifact base name without
// extension; the capturer decides the extension.
type Request struct {
	URL      string
	Flags    []string
	Dir      string
	Filename string
	MaxRes   string
}

// Capturer turns a URL into an artifact on disk and returns the artifact's
// filename relative to the archive directory.
type Capturer interface {
	Capture(ctx context.Context, req Request) (string, error)
}

// runCommand executes the binary under the given deadline. Stderr is kept for
// error reporting; a process still running at the deadline is killed.
func runCommand(ctx context.Context, timeout time.Duration, binary string, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%s timed out after %s", binary, timeout)
	}
	msg := strings.TrimSpace(stderr.String())
	if len(msg) > 500 {
		msg = msg[len(msg)-500:]
	}
	if msg != "" {
		return fmt.Errorf("%s failed: %w: %s", binary, err, msg)
	}
	return fmt.Errorf("%s failed: %w", binary, err)
}

// MonolithCapturer snapshots a webpage into a single self-contained HTML file.
type MonolithCapturer struct {
	Binary  string
	Timeout time.Duration
	log     *logger.Logger
}

func NewMonolithCapturer(log *logger.Logger) *MonolithCapturer {
	return &MonolithCapturer{
		Binary:  "monolith",
		Timeout: constants.MonolithTimeLimit,
		log:     log.WithComponent("capture.monolith"),
	}
}

func (c *MonolithCapturer) Capture(ctx context.Context, req Request) (string, error) {
	artifact := req.Filename + ".html"
	output := filepath.Join(req.Dir, artifact)

	args := []string{"--output=" + output}
	args = append(args, req.Flags...)
	args = append(args, req.URL)

	c.log.Info("Capturing webpage", "url", req.URL, "output", output)
	if err := runCommand(ctx, c.Timeout, c.Binary, args); err != nil {
		return "", err
	}
	return artifact, nil
}

// YtdlpCapturer downloads a video capped by size and resolution. yt-dlp picks
// the container during download, then merges to mp4, so the recorded artifact
// is always <filename>.mp4.
type YtdlpCapturer struct {
	Binary  string
	Timeout time.Duration
	log     *logger.Logger
}

func NewYtdlpCapturer(log *logger.Logger) *YtdlpCapturer {
	return &YtdlpCapturer{
		Binary:  "yt-dlp",
		Timeout: constants.YtdlpTimeLimit,
		log:     log.WithComponent("capture.ytdlp"),
	}
}

func (c *YtdlpCapturer) Capture(ctx context.Context, req Request) (string, error) {
	maxRes := req.MaxRes
	if maxRes == "" {
		maxRes = constants.DefaultMaxResolution
	}

	args := append([]string{}, req.Flags...)
	args = append(args,
		"--no-playlist",
		"--windows-filenames",
		"--max-filesize", constants.YtdlpMaxFilesize,
		"-P", req.Dir,
		"-o", req.Filename+".%(ext)s",
		req.URL,
		"-f", fmt.Sprintf("bestvideo[height<=%s]+bestaudio", maxRes),
	)

	c.log.Info("Capturing video", "url", req.URL, "max_res", maxRes)
	if err := runCommand(ctx, c.Timeout, c.Binary, args); err != nil {
		return "", err
	}
	return req.Filename + ".mp4", nil
}
