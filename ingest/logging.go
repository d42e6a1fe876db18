package ingest

import (
	"github.com/streamingfast/logging"
)

var zlog, tracer = logging.PackageLogger("ingest", "github.com/streamingfast/dexpath/ingest")
