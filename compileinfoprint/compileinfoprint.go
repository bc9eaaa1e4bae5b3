// compileinfoprint is imported for the side effect of printing the compileinfo
// to os.StdErr. Set DICOMBIDS_QUIET to any value to suppress it, e.g. when a
// pipeline captures stderr.
package compileinfoprint

import (
	"os"

	"github.com/carbocation/dicombids/compileinfo"
)

func init() {
	if os.Getenv("DICOMBIDS_QUIET") != "" {
		return
	}

	compileinfo.PrintToStdErr()
}
