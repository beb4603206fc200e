// Package processor contains the request orchestration: it validates the
// request body, collects the translatable leaves, dispatches them to the
// translator and rebuilds the response document. It serves as the main
// coordinator between the HTTP, Lambda and CLI front ends and the core
// packages.
package processor
