// Package audio captures microphone input with ffmpeg. A recording buffers
// the encoded stream in memory until it is stopped and handed to
// transcription as one clip.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	goruntime "runtime"
	"strconv"
	"sync"
	"time"

	"maestro/internal/domain"
	"maestro/internal/ports"
)

const clipMIMEType = "audio/webm"

// FFMPEGRecorder implements ports.AudioRecorder over an ffmpeg subprocess.
type FFMPEGRecorder struct {
	command string
}

func NewFFMPEGRecorder(command string) *FFMPEGRecorder {
	if command == "" {
		command = "ffmpeg"
	}
	return &FFMPEGRecorder{command: command}
}

func (r *FFMPEGRecorder) Start(ctx context.Context, cfg ports.AudioConfig) (ports.RecordingHandle, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = defaultInputFormat()
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = defaultInputDevice()
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-c:a", "libopus",
		"-b:a", "32k",
		"-f", "webm",
		"-",
	}

	cmd := exec.CommandContext(ctx, r.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	rec := &recording{
		stderr:  &stderr,
		process: cmd.Process,
		done:    make(chan error, 1),
	}

	go func() {
		_, copyErr := io.Copy(&rec.buf, stdout)
		waitErr := cmd.Wait()
		if waitErr == nil {
			waitErr = copyErr
		}
		rec.done <- waitErr
		close(rec.done)
	}()

	// Catch configurations ffmpeg rejects immediately (bad device, bad
	// input format) so the session never claims to be recording.
	select {
	case err := <-rec.done:
		if err != nil {
			return nil, fmt.Errorf("ffmpeg exited before capture started: %w: %s", err, trimmed(stderr.String()))
		}
		return nil, errors.New("ffmpeg exited before capture started")
	case <-time.After(250 * time.Millisecond):
	}

	return rec, nil
}

func defaultInputFormat() string {
	if goruntime.GOOS == "darwin" {
		return "avfoundation"
	}
	return "pulse"
}

func defaultInputDevice() string {
	if goruntime.GOOS == "darwin" {
		return ":0"
	}
	return "default"
}

type recording struct {
	buf    bytes.Buffer
	stderr *bytes.Buffer

	process *os.Process
	done    chan error

	stopOnce sync.Once
	stopErr  error
}

// Stop flushes the encoder and returns the buffered clip.
func (r *recording) Stop() (domain.AudioClip, error) {
	r.finish()
	if r.stopErr != nil {
		return domain.AudioClip{}, r.stopErr
	}
	return domain.AudioClip{Data: r.buf.Bytes(), MIMEType: clipMIMEType}, nil
}

// Discard stops the capture and drops the buffered audio.
func (r *recording) Discard() {
	r.finish()
}

func (r *recording) finish() {
	r.stopOnce.Do(func() {
		if r.process != nil {
			_ = r.process.Signal(os.Interrupt)
		}

		var err error
		select {
		case e, ok := <-r.done:
			if ok {
				err = e
			}
		case <-time.After(1200 * time.Millisecond):
			if r.process != nil {
				_ = r.process.Kill()
			}
			e, ok := <-r.done
			if ok {
				err = e
			}
		}

		r.stopErr = normalizeStopErr(err)
		if r.stopErr != nil && r.stderr != nil && r.stderr.Len() > 0 {
			r.stopErr = fmt.Errorf("%w: %s", r.stopErr, trimmed(r.stderr.String()))
		}
	})
}

// normalizeStopErr drops the non-zero exit status ffmpeg reports when it is
// interrupted mid-capture.
func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func trimmed(input string) string {
	return string(bytes.TrimSpace([]byte(input)))
}
