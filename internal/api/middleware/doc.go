// Package middleware holds the gin middleware shared by the HTTP and stream
// endpoints.
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
package middleware
