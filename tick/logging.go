package tick

import (
	"github.com/streamingfast/logging"
)

var zlog, tracer = logging.PackageLogger("tick", "github.com/streamingfast/dexpath/tick")
