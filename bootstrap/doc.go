// Package bootstrap runs the service lifecycle.
//
// A process moves through STARTING, CONFIG_RESOLVED, the optional
// PRIVILEGE_DROPPED, LISTENING, SHUTTING_DOWN and STOPPED. Every step
// before LISTENING is fatal on error and ends in FAILED; the returned error
// carries the code the binary turns into its exit status.
//
//	settings, err := config.Load("launchpad")
//	if err != nil {
//	    os.Exit(errors.ExitCode(err))
//	}
//	app, err := bootstrap.New(settings, bootstrap.WithHandler(appHandler))
//	if err != nil {
//	    os.Exit(errors.ExitCode(err))
//	}
//	os.Exit(errors.ExitCode(app.Run(ctx)))
//
// The liveness route reads the lifecycle state without locking, so it
// answers "up" exactly while the service is LISTENING.
package bootstrap
