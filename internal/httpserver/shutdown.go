package httpserver

import "time"

// ShutdownTimeout bounds graceful shutdown and dependency cleanup.
var ShutdownTimeout = 15 * time.Second
