//go:build tools
// +build tools

// Package tools фиксирует версии утилит, вызываемых через go generate.
package tools

import (
	_ "go.uber.org/mock/mockgen"
)
