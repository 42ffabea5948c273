// Package rest provides a JSON read client built on httpclient.
//
// It inherits auth, TLS, and resilience from httpclient and adds a typed
// GET that decodes with goccy/go-json:
//
//	client, err := rest.New(httpclient.Config{BaseURL: "https://api.example.com"})
//	resp, err := rest.Get[value.Value](ctx, client, "/people",
//	    rest.WithQuery(url.Values{"name": {"Alice"}}),
//	    rest.WithRequestID(id))
package rest
