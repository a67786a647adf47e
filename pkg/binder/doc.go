// Package binder fills typed request structs from JSON bodies, chi path
// parameters and query strings. Binders compose: handler.Wrap applies them in
// order and skips any that return ErrBinderNotApplicable.
//
//	type sendRequest struct {
//		InternID string `path:"id"`
//		Kind     string `path:"kind"`
//		Format   string `query:"format"`
//	}
package binder
