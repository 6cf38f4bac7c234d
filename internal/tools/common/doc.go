// Package common provides shared helpers for the MCP tool implementations.
package common
