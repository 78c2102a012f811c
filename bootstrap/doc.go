// Package bootstrap runs the lifecycle of a voxkit process.
//
// An App owns the typed configuration, the logger and the component
// registry. Run serves until SIGINT/SIGTERM; RunTask runs one finite job,
// such as transcribing a single file, with the same startup and shutdown.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(asrComponent)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*AppConfig]) error {
//	    pipeline, err = transcript.NewPipeline(opts)
//	    return err
//	})
//	err = app.RunTask(ctx, func(ctx context.Context) error { ... })
package bootstrap
