package fetcher

// ErrorCapture accumulates the first error message seen during one logical
// fetch operation. Later messages do not overwrite the first: when a fetch
// fails after a cascade of fallbacks, the earliest failure is usually the
// most informative one. Each fetch call gets its own ErrorCapture so that
// concurrent fetches for different instruments cannot cross-talk.
type ErrorCapture struct {
	msg string
}

// Capture records msg if no message has been captured yet.
func (c *ErrorCapture) Capture(msg string) {
	if c.msg == "" && msg != "" {
		c.msg = msg
	}
}

// CaptureErr records err's message if no message has been captured yet.
func (c *ErrorCapture) CaptureErr(err error) {
	if err != nil {
		c.Capture(err.Error())
	}
}

// Message returns the first captured message, or the empty string.
func (c *ErrorCapture) Message() string {
	return c.msg
}

// MessageOr returns the first captured message, or fallback when nothing was
// captured. Terminal failure results must never carry an empty diagnostic.
func (c *ErrorCapture) MessageOr(fallback string) string {
	if c.msg == "" {
		return fallback
	}
	return c.msg
}
