package render

// Option configures a Renderer.
type Option func(*Renderer)

// WithColor turns ANSI highlighting on or off.
func WithColor(enabled bool) Option {
	return func(r *Renderer) {
		r.color = enabled
	}
}
