package vfs

import "context"

// Handle lazily loads the bytes backing an unresolved entry.
// The loader is called at most once; its result is cached on the entry.
type Handle func(ctx context.Context) ([]byte, error)

// Content is a two-state variant: either an unresolved handle to external
// bytes, or a resolved payload. Resolution happens in place via Resolve and
// mutates nothing until requested.
type Content struct {
	data     []byte
	handle   Handle
	resolved bool
}

// TextContent returns resolved content holding the given text.
func TextContent(s string) Content {
	return Content{data: []byte(s), resolved: true}
}

// BinaryContent returns resolved content holding the given bytes.
func BinaryContent(b []byte) Content {
	return Content{data: b, resolved: true}
}

// LazyContent returns unresolved content backed by a loader.
func LazyContent(h Handle) Content {
	return Content{handle: h}
}

// Resolved reports whether the payload is already materialized.
func (c *Content) Resolved() bool {
	return c.resolved
}

// Resolve materializes the payload, invoking the loader on first call.
func (c *Content) Resolve(ctx context.Context) ([]byte, error) {
	if c.resolved {
		return c.data, nil
	}
	if c.handle == nil {
		c.resolved = true
		return nil, nil
	}
	data, err := c.handle(ctx)
	if err != nil {
		return nil, err
	}
	c.data = data
	c.handle = nil
	c.resolved = true
	return c.data, nil
}

// Text returns the resolved payload as a string. Valid only after Resolve.
func (c *Content) Text() string {
	return string(c.data)
}

// Bytes returns the resolved payload. Valid only after Resolve.
func (c *Content) Bytes() []byte {
	return c.data
}
