package cli

import (
	"github.com/streamingfast/logging"
)

var zlog, tracer = logging.PackageLogger("dexpath", "github.com/streamingfast/dexpath/cmd/dexpath/cli")
