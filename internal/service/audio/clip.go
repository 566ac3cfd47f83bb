// Package audio validates uploaded recordings before they are sent to a
// speech-to-text provider.
package audio

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/syedarman1/screenme-sub001/internal/domain"
)

// fallbackExtension is used when neither the upload name nor the content
// reveal a format. Browser MediaRecorder uploads default to webm.
const fallbackExtension = ".webm"

// Limits bounds what a single upload may contain.
type Limits struct {
	MaxBytes int64
}

// DefaultLimits matches the provider's 25 MiB upload ceiling.
func DefaultLimits() Limits {
	return Limits{MaxBytes: 25 * 1024 * 1024}
}

// Clip is one recorded utterance ready for transcription.
type Clip struct {
	Data     []byte
	Filename string
	MIMEType string
}

// Size returns the clip length in bytes.
func (c Clip) Size() int {
	return len(c.Data)
}

// Inspect checks the upload against limits and sniffs its format. The
// filename always carries an extension because providers use it to pick a
// decoder.
func Inspect(data []byte, filename string, limits Limits) (Clip, error) {
	if len(data) == 0 {
		return Clip{}, domain.ErrEmptyAudio
	}
	if limits.MaxBytes > 0 && int64(len(data)) > limits.MaxBytes {
		return Clip{}, domain.ErrAudioTooLarge
	}

	mime := mimetype.Detect(data)
	return Clip{
		Data:     data,
		Filename: uploadName(filename, mime.Extension()),
		MIMEType: mime.String(),
	}, nil
}

func uploadName(filename, detectedExt string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "." || base == "/" {
		base = ""
	}
	if base != "" && filepath.Ext(base) != "" {
		return base
	}
	if base == "" {
		base = "audio"
	}
	if detectedExt == "" {
		detectedExt = fallbackExtension
	}
	return base + detectedExt
}
