/*
Package pipeline runs complete shaping passes for a text block.

A Block owns a shaping engine, a token cache and the no-join configuration
of a piece of text. Every call to Shape runs all stages on a raw string:
line ending normalization, markup stripping, no-join substitution, style
projection, line breaking, cluster resolution and the construction of
per-character records.

If shaping is not possible the block degrades: Shape returns an error
coded core.EFALLBACK together with a result flagged as Fallback. Hosts then
render the stripped text without shaping.

Blocks are not safe for concurrent use. Shape must not be called from
within a running pass of the same block.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package pipeline

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'devatext.pipeline'.
func tracer() tracing.Trace {
	return tracing.Select("devatext.pipeline")
}
