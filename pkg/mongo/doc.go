// Package mongo connects to MongoDB with the v2 driver and exposes a
// readiness check. Intern records and letter history can be stored in it.
//
//	database, err := mongo.NewWithDatabase(ctx, cfg.Mongo)
//	if err != nil {
//		return err
//	}
//	interns := intern.NewMongoStore(database)
package mongo
