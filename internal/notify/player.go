package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// ErrNoAudioCommand is returned by DetectPlayer when no known audio command
// is installed.
var ErrNoAudioCommand = errors.New("no audio command found")

// Player produces a tone. Play must return quickly: it reports failures to
// start playback, while the tone itself may finish in the background.
type Player interface {
	Play(ctx context.Context, tone Tone) error
}

// PlayerFunc adapts a function to the Player interface.
type PlayerFunc func(ctx context.Context, tone Tone) error

// Play calls f.
func (f PlayerFunc) Play(ctx context.Context, tone Tone) error {
	return f(ctx, tone)
}

// NopPlayer discards every tone.
type NopPlayer struct{}

// Play does nothing.
func (NopPlayer) Play(context.Context, Tone) error { return nil }

// BellPlayer rings the terminal bell.
type BellPlayer struct {
	w io.Writer
}

// NewBellPlayer writes BEL characters to w, usually os.Stderr.
func NewBellPlayer(w io.Writer) *BellPlayer {
	return &BellPlayer{w: w}
}

// Play writes a single BEL character.
func (b *BellPlayer) Play(context.Context, Tone) error {
	_, err := io.WriteString(b.w, "\a")
	return err
}

// CommandPlayer pipes the rendered WAV into an external program such as
// aplay or paplay. Programs that cannot read standard input receive the
// path of a temporary file instead.
type CommandPlayer struct {
	name     string
	args     []string
	fromFile bool
	logger   *slog.Logger
}

// NewCommandPlayer creates a player that runs name with args. When fromFile
// is true the WAV is written to a temporary file whose path is appended to
// args; the file is removed once the command exits.
func NewCommandPlayer(name string, args []string, fromFile bool, logger *slog.Logger) *CommandPlayer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandPlayer{name: name, args: args, fromFile: fromFile, logger: logger}
}

// Play starts the command and returns; the process is reaped in the
// background after the tone completes.
func (c *CommandPlayer) Play(ctx context.Context, tone Tone) error {
	wav := tone.WAV()
	args := append([]string(nil), c.args...)

	var tmpPath string
	if c.fromFile {
		f, err := os.CreateTemp("", "wordwatch-*.wav")
		if err != nil {
			return fmt.Errorf("failed to create tone file: %w", err)
		}
		tmpPath = f.Name()
		if _, err := f.Write(wav); err != nil {
			_ = f.Close()
			_ = os.Remove(tmpPath)
			return fmt.Errorf("failed to write tone file: %w", err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("failed to write tone file: %w", err)
		}
		args = append(args, tmpPath)
	}

	cmd := exec.CommandContext(ctx, c.name, args...) //nolint:gosec // command comes from a fixed list or the config file
	if !c.fromFile {
		cmd.Stdin = bytes.NewReader(wav)
	}

	if err := cmd.Start(); err != nil {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
		return fmt.Errorf("failed to start %s: %w", c.name, err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			c.logger.Warn("audio command failed", "command", c.name, "error", err)
		}
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()
	return nil
}

// knownCommands are tried in order by DetectPlayer.
var knownCommands = []struct {
	name     string
	args     []string
	fromFile bool
}{
	{name: "paplay", args: nil},
	{name: "aplay", args: []string{"-q", "-"}},
	{name: "afplay", args: nil, fromFile: true},
}

// DetectPlayer returns a CommandPlayer for the first audio command found in
// PATH, or ErrNoAudioCommand.
func DetectPlayer(logger *slog.Logger) (*CommandPlayer, error) {
	for _, kc := range knownCommands {
		if _, err := exec.LookPath(kc.name); err == nil {
			return NewCommandPlayer(kc.name, kc.args, kc.fromFile, logger), nil
		}
	}
	return nil, ErrNoAudioCommand
}
