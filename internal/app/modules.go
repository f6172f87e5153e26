package app

import (
	"github.com/vk/hotbootgo/internal/activate"
	"github.com/vk/hotbootgo/modules/corelib"
)

// coreLibraries is the default set of host libraries compiled into the
// binary. These are the precompiled base modules dynamic code can call into
// once their metadata is patched.
var coreLibraries = []activate.Library{
	&corelib.Module{},
}
