package api

const (
	// GET /ping to check the service is up
	pingEndpoint = "/ping"
	// GET /metrics to scrape the Prometheus metrics
	metricsEndpoint = "/metrics"

	// version routes

	// GET /versions to list the API versions
	versionsEndpoint = "/versions"
	// GET /changelog to get the API changelog (?format=markdown|html|json)
	changelogEndpoint = "/changelog"

	// client routes

	// GET /clients/version to get the API version pinned by the client
	// PUT /clients/version to pin the API version of the client
	// DELETE /clients/version to remove the pin of the client
	clientVersionEndpoint = "/clients/version"

	// post routes

	// GET /posts/{id} to get a post
	// PUT /posts/{id} to create or replace a post
	// DELETE /posts/{id} to delete a post
	postEndpoint = "/posts/{id}"
)
