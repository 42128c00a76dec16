// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/ipkg/internal/adapters/checkout"
	_ "go.trai.ch/ipkg/internal/adapters/config"
	_ "go.trai.ch/ipkg/internal/adapters/fs"
	_ "go.trai.ch/ipkg/internal/adapters/git"
	_ "go.trai.ch/ipkg/internal/adapters/lockfile"
	_ "go.trai.ch/ipkg/internal/adapters/logger"
	_ "go.trai.ch/ipkg/internal/adapters/registry"
	// Register app and engine nodes.
	_ "go.trai.ch/ipkg/internal/app"
	_ "go.trai.ch/ipkg/internal/engine/resolver"
	_ "go.trai.ch/ipkg/internal/engine/session"
)
