// Package server provides the MCP server context and the HTTP side of the
// larkdocs server.
//
// # Key Components
//
// ServerContext carries the shared dependencies of every tool handler: the
// Lark platform client, the statically configured user access token, the
// metrics recorder and the audit logger.
//
// HTTPServer mounts mcp-go's streamable HTTP transport at /mcp. The caller's
// Lark user access token is read from each request, either from
// "Authorization: Bearer <token>" or from the X-Lark-User-Access-Token
// header, and placed in the request context where tool handlers pick it up.
// Tokens are passed through to the platform unchanged; this server neither
// issues nor refreshes them.
//
// HealthChecker serves /healthz, /readyz and /healthz/detailed for
// Kubernetes probes. MetricsServer exposes Prometheus metrics on a separate
// port.
package server
