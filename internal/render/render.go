package render

// Markdown renders markdown content for terminal display.
func Markdown(content string, opts Options) (string, error) {
	r, err := renderers.checkout(opts)
	if err != nil {
		return "", err
	}
	defer renderers.checkin(opts, r)

	return r.Render(content)
}
