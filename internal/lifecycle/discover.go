package lifecycle

import (
	"context"

	"github.com/dnchandra/logfleet/internal/remote"
)

// Discover lists the files under basePath on the remote host, filtered by
// f. Exactly one executor round-trip is issued; the filename is the only
// metadata collected. An empty listing is a valid result.
func Discover(ctx context.Context, r remote.Runner, cmds remote.CommandSet, basePath string, f remote.ExtFilter) ([]string, error) {
	return r.Run(ctx, cmds.ListFiles(basePath, f))
}
