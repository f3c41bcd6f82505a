package charinfo

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'devatext.lines'.
func tracer() tracing.Trace {
	return tracing.Select("devatext.lines")
}
