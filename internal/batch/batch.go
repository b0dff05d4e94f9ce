// Package batch generates license keys in bulk.
package batch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"licensekey/pkg/licensekey"
)

// Request asks for the key of one seed. Identity is informational and is
// carried through to the result.
type Request struct {
	Seed     uint64
	Identity string
}

// Issued is a generated key together with the request it answers.
type Issued struct {
	Seed     uint64
	Identity string
	Key      licensekey.LicenseKey
	Text     string
}

// Generate creates the keys for reqs using up to workers goroutines.
// Results are returned in request order. Generation stops early when ctx
// is cancelled.
func Generate(ctx context.Context, gen *licensekey.Generator, codec licensekey.Codec, reqs []Request, workers int) ([]Issued, error) {
	if gen == nil {
		return nil, fmt.Errorf("batch: generator is nil")
	}
	if codec == nil {
		codec = licensekey.HexCodec{}
	}
	if workers < 1 {
		workers = 1
	}

	out := make([]Issued, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, req := range reqs {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			key := gen.Generate(req.Seed)
			out[i] = Issued{
				Seed:     req.Seed,
				Identity: req.Identity,
				Key:      key,
				Text:     key.Format(codec),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch generation aborted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch generation aborted: %w", err)
	}

	return out, nil
}

// Range returns count requests for consecutive seeds starting at first.
func Range(first uint64, count int) []Request {
	reqs := make([]Request, 0, max(count, 0))
	for i := 0; i < count; i++ {
		reqs = append(reqs, Request{Seed: first + uint64(i)})
	}
	return reqs
}
