package graph

import (
	"github.com/streamingfast/logging"
)

var zlog, tracer = logging.PackageLogger("graph", "github.com/streamingfast/dexpath/graph")
