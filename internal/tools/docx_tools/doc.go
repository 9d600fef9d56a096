// Package docx_tools provides MCP tools for Lark/Feishu cloud documents.
//
// Available tools:
//   - docx_builtin_search (docx.builtin.search): search cloud documents as
//     the calling user
//   - docx_builtin_import (docx.builtin.import): import markdown as a new
//     docx document
//
// Both tools take their parameters under a "data" object and accept an
// optional "useUAT" flag. Search always needs a user access token. Import
// runs as the user only when a token is present and useUAT is set, and as
// the app (tenant identity) otherwise.
//
// Every call returns exactly one result whose single text content is JSON:
// the platform payload on success, or an error object with isError set.
//
// Example tool usage:
//
//	docx_builtin_search({
//	  data: {search_key: "weekly report", count: 10, docs_types: ["doc", "sheet"]},
//	  useUAT: true
//	})
//
//	docx_builtin_import({
//	  data: {markdown: "# Notes\n\n- item", file_name: "notes"}
//	})
package docx_tools
