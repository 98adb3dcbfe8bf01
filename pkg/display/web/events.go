package web

// Setting is the second byte of a settings message sent by a client.
type Setting = uint8

const (
	_ Setting = iota
	Compression
	CompressionLevel
	FrameSkipping
)

// Client message prefixes.
const (
	SettingsMessage = 10
	KeepAlive       = 254
	Closing         = 255
)

// Type is the first byte of every message sent to a client.
type Type = uint8

const (
	// Frame carries a cache index followed by a full RGBA frame,
	// brotli compressed when compression is enabled.
	Frame Type = iota
	// FrameSkip carries the number of unchanged frames not sent.
	FrameSkip
	// FrameCache carries the cache index of a frame the client has
	// already received.
	FrameCache
	// FrameCacheSync carries every cached frame, each prefixed by
	// its length and index.
	FrameCacheSync
	// FrameSync carries the current frame, always compressed.
	FrameSync
	// ClientInfo carries the hub settings.
	ClientInfo
	// ClientClosing carries the ID of a client that disconnected.
	ClientClosing
	// ServerInfo carries the ID and round trip time of every client.
	ServerInfo
)
