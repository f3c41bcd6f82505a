/*
Package resources resolves font resources for a text block.

A font may be handed over as raw bytes, as a file path (absolute or relative
to a list of search folders), or as a font name, which is looked up among the
fonts installed on the system. If fontconfig is configured, its font list is
consulted as a last resort.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'devatext.core'.
func tracer() tracing.Trace {
	return tracing.Select("devatext.core")
}
