// Package unmock describes mocked HTTP services for tests.
//
// A test author declares the shape of a response with schema values
// (literals mixed with dynamic schema nodes), and the mock builder compiles
// that shape into strict JSON Schema and upserts it into a ServiceStore as an
// EndpointDefinition. Independently, the fingerprint package derives a short
// deterministic id for a request so that external collaborators (such as a
// snapshot recorder) can correlate requests across runs.
//
// # Quick Start
//
//	store := service.New()
//	svc := mock.New(store, "https://api.example.com", mock.WithName("horoscope"))
//
//	svc, err := svc.Get("/horoscope").ReplyData(schema.Object{
//	    "sign":      schema.String(schema.Enum("aries", "taurus")),
//	    "ascendant": schema.Opt(schema.String()),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	def, _ := store.Get(unmock.EndpointKey{
//	    BaseURL: "https://api.example.com", Method: unmock.MethodGet,
//	    Endpoint: "/horoscope", StatusCode: 200,
//	})
//	fmt.Println(def.Response["type"]) // object
//
// # Endpoint identity
//
// Definitions are keyed by (baseUrl, method, endpoint, statusCode). Replying
// again on the same key replaces the stored definition; replying with a
// different status code adds a second one.
//
// # Concurrency
//
// EndpointDefinition values are safe for concurrent read access. The
// in-memory store in package service serializes writers itself; other
// ServiceStore implementations must document their own discipline.
//
// # Subpackages
//
//   - schema: schema values, the authoring DSL and the compiler
//   - mock: fluent per-verb builder
//   - service: in-memory ServiceStore
//   - fingerprint: request fingerprints under ignore rules
//   - canonicaljson: RFC 8785 (JCS) deterministic JSON serialization
//   - snapshot: injected recorder keyed by fingerprint
//   - config: file and environment configuration, hot reload, logging
//   - metrics: Prometheus collectors
//
// The unmock command (cmd/unmock) compiles schema documents and fingerprints
// requests from the shell.
package unmock
