// ReelMatch - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package services adapts ReelMatch components to suture's Serve pattern.

HTTPServerService wraps *http.Server: ListenAndServe in a goroutine and a
graceful Shutdown when the supervisor cancels. WarmupService calls the
recommendation service's Init once at startup and then leaves the tree.
*/
package services
