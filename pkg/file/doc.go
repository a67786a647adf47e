// Package file archives generated documents to the local filesystem or to
// S3-compatible object storage behind a single Storage interface.
//
//	store, err := file.NewS3Storage(ctx, cfg.Archive.S3)
//	obj, err := store.Put(ctx, file.Key(ownerID, internID, doc.Filename), doc.Content, doc.ContentType)
//	// obj.URL is the public location of the document
package file
