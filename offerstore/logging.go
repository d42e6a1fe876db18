package offerstore

import (
	"github.com/streamingfast/logging"
)

var zlog, tracer = logging.PackageLogger("offerstore", "github.com/streamingfast/dexpath/offerstore")
