// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package main is the entry point for the ReelMatch server.

ReelMatch serves content-based movie recommendations from the MovieLens
style CSV files in the data directory: metadata, credits, keywords, links
and ratings. Movies are compared by a bag of words built from their cast,
director, keywords and genres.

# Application Architecture

	RootSupervisor ("reelmatch")
	├── DataSupervisor ("data-layer")
	│   └── WarmupService (RECOMMEND_WARMUP_ON_START)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Startup order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Artifact store: file, badger, minio or none
 4. Catalog: DuckDB (optional, DUCKDB_ENABLED)
 5. Recommendation service
 6. Supervisor tree and HTTP server

# Environment

Common settings:

	DATA_DIR=/data/movies
	RECOMMEND_VECTORIZER=count        # or tfidf
	RECOMMEND_SIMILARITY_MODE=neighbors
	ARTIFACT_BACKEND=file              # file, badger, minio, none
	ARTIFACT_PATH=/data/artifacts
	DUCKDB_ENABLED=true
	HTTP_PORT=8080
	LOG_LEVEL=info

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains for
HTTP_SHUTDOWN_TIMEOUT, then the artifact store and catalog are closed.
*/
package main
