package gatechain

// Context provides environmental information that node runtimes need.
type Context struct {
	SampleRate     float64
	FramesPerBlock int
}
