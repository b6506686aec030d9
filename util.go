package terra

import (
	"pkg.world.dev/terra/server"
)

// separateOptions splits the caller-facing WorldOption list into the
// option types each subsystem consumes. Callers hand NewWorld one flat
// list; which subsystem an option actually drives stays an
// implementation detail.
func separateOptions(opts []WorldOption) (
	serverOptions []server.Option,
	terraOptions []func(*World),
) {
	for _, opt := range opts {
		if opt.serverOption != nil {
			serverOptions = append(serverOptions, opt.serverOption)
		}
		if opt.terraOption != nil {
			terraOptions = append(terraOptions, opt.terraOption)
		}
	}
	return serverOptions, terraOptions
}
