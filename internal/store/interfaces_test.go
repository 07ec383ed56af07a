package store

import (
	"github.com/bokfor-dev/bokfor/internal/closing"
	"github.com/bokfor-dev/bokfor/internal/consolidation"
	"github.com/bokfor-dev/bokfor/internal/ledger"
	"github.com/bokfor-dev/bokfor/internal/sie"
)

// Both implementations must satisfy every service's store surface.
var (
	_ ledger.Store        = (*DB)(nil)
	_ closing.Store       = (*DB)(nil)
	_ consolidation.Store = (*DB)(nil)
	_ sie.Store           = (*DB)(nil)

	_ ledger.Store        = (*Memory)(nil)
	_ closing.Store       = (*Memory)(nil)
	_ consolidation.Store = (*Memory)(nil)
	_ sie.Store           = (*Memory)(nil)
)
