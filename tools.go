//go:build tools
// +build tools

// Tool dependencies pinned in go.mod: linting, mock generation for
// pkg/domain/*/mocks, import formatting and vulnerability scanning.
package main

import (
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
	_ "go.uber.org/mock/mockgen"
	_ "golang.org/x/tools/cmd/goimports"
	_ "golang.org/x/vuln/cmd/govulncheck"
)
