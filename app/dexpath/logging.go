package dexpath

import (
	"github.com/streamingfast/logging"
)

var zlog, tracer = logging.PackageLogger("dexpath", "github.com/streamingfast/dexpath/app/dexpath")
