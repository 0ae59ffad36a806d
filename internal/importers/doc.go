// Package importers turns Rainfocus search results into sessions.
//
// # Architecture
//
// One pipeline run handles one filter value:
//
//	rainfocus.Client.SearchAll → []RawItem → Normalizer → []entities.Session → Exporter
//
// The Normalizer applies the deployment's timezone offset, classifies the
// technical level from the session code and sanitizes free text. Items it
// cannot normalize are returned as Rejections next to the good sessions;
// they never abort the run.
//
// # Fan-out
//
// Independent filter values (learning maps, session types) are processed
// with FanOut, a bounded worker pool in which each unit reports its own
// success or failure:
//
//	results := importers.FanOut(ctx, importers.DefaultWorkers, maps,
//	    func(ctx context.Context, m entities.LearningMap) error {
//	        _, err := pipeline.Run(ctx, rainfocus.Filters{rainfocus.FilterLearningMap: m.ID})
//	        return err
//	    }, nil)
//
//	for _, r := range importers.Failures(results) {
//	    log.Printf("%s: %v", r.Input, r.Err)
//	}
//
// # Learning maps
//
// LearningMapsFromCatalog reads the learningmap attribute of a catalogue
// response (rainfocus.Client.Catalog) and flattens it into
// entities.LearningMap values, one per child map.
package importers
