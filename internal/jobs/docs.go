// Package jobs runs scheduled background work with github.com/robfig/cron/v3.
//
// GeocodeJob resolves pickup and delivery coordinates the business did not
// supply. It runs on GEOCODE_SCHEDULE (default every minute) and only when a
// Google Maps key is configured. Overlapping runs are skipped.
//
//	jm := jobs.NewJobManager(logger, jobs.NewGeocodeJob(handler, schedule, 50, logger))
//	if err := jm.StartAll(); err != nil {
//		return err
//	}
//	defer jm.StopAll()
package jobs
