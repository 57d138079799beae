package market

import (
	"context"

	"github.com/rs/zerolog"
)

// Snapshot aggregates the best-effort market context for one report run.
// Nil fields mean the source was disabled or unavailable.
type Snapshot struct {
	DXY      *Observation
	Reserves *WorldReserves
}

// Collect gathers all configured sources. Source failures are logged and
// leave the corresponding field nil.
func Collect(ctx context.Context, fred *FREDClient, wb *WorldBankClient, logger zerolog.Logger) *Snapshot {
	snap := &Snapshot{}

	if fred != nil {
		dxy, err := fred.FetchDXY(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("FRED DXY fetch failed, continuing without it")
		} else {
			snap.DXY = dxy
		}
	}

	if wb != nil {
		reserves, err := wb.FetchReserves(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("World Bank reserves fetch failed, continuing without it")
		} else {
			snap.Reserves = reserves
		}
	}

	return snap
}
