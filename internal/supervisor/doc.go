// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package supervisor runs the long-lived parts of ReelMatch under a suture v4
supervisor tree.

	RootSupervisor ("reelmatch")
	├── DataSupervisor ("data-layer")
	│   └── WarmupService (if recommend.warmup_on_start)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff. Supervisor events are
logged through sutureslog, which takes an *slog.Logger; build it with
logging.NewSlogLogger so events land in the zerolog output.

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewWarmupService(svc))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)
*/
package supervisor
