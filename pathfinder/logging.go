package pathfinder

import (
	"github.com/streamingfast/logging"
)

var zlog, tracer = logging.PackageLogger("pathfinder", "github.com/streamingfast/dexpath/pathfinder")
