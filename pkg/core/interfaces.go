package core

// Logger receives progress output from loaders and tools
type Logger interface {
	Printf(format string, args ...interface{})
}
