// Package common provides shared utilities for MCP tool implementations:
// user token resolution, the instrumented tool handler wrapper, and an
// instrumented decorator for the Lark platform client.
package common
