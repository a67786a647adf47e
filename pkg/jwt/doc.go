// Package jwt verifies HS256 bearer tokens issued by the external identity
// provider and exposes the token subject as the request owner.
//
//	auth, err := jwt.New(cfg.Auth)
//	r.Use(jwt.Middleware(auth, nil))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		ownerID := jwt.Subject(r.Context())
//	}
package jwt
