package handlers

const (
	// Sample rates accepted by the render endpoints
	minSampleRate = 8000
	maxSampleRate = 192000

	// Parts of a human-readable score length, e.g. "1m 30s"
	lengthUnits = 2

	defaultParseLogLimit = 50
	wavContentType       = "audio/wav"
)
