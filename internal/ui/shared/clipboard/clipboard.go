// Package clipboard wraps the system clipboard behind a small interface so
// views can be tested without touching the host clipboard.
package clipboard

import "github.com/atotto/clipboard"

// Clipboard defines the interface for clipboard operations.
type Clipboard interface {
	Copy(text string) error
}

// System implements Clipboard using the system clipboard
// (pbcopy, xclip/xsel/wl-copy or the Windows API).
type System struct{}

// Copy copies text to the system clipboard.
func (System) Copy(text string) error {
	return clipboard.WriteAll(text)
}

// Supported reports whether a clipboard backend is available.
func Supported() bool {
	return !clipboard.Unsupported
}

// Recorder keeps every copied value in memory.
type Recorder struct {
	Copied []string
	Err    error
}

// Copy records text, or returns Err when set.
func (r *Recorder) Copy(text string) error {
	if r.Err != nil {
		return r.Err
	}
	r.Copied = append(r.Copied, text)
	return nil
}

// Last returns the most recent copied value.
func (r *Recorder) Last() string {
	if len(r.Copied) == 0 {
		return ""
	}
	return r.Copied[len(r.Copied)-1]
}
