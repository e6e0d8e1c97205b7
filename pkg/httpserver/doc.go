// Package httpserver wraps the standard library http.Server with
// environment-driven configuration, functional options, and graceful
// shutdown on SIGINT/SIGTERM.
//
// Start and stop hooks let the caller tie external resources to the server
// lifecycle, such as closing a database client after the listener stops:
//
//	srv := httpserver.NewFromConfig(cfg,
//		httpserver.WithLogger(log),
//		httpserver.WithStopHook(func(log *slog.Logger) {
//			if err := manager.Close(context.Background()); err != nil {
//				log.Error("closing mongodb client", logger.Error(err))
//			}
//		}),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server exited", logger.Error(err))
//	}
package httpserver
