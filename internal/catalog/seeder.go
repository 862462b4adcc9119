package catalog

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/config"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// NewLoader builds the loader for cfg: S3 with a local fallback when S3 is
// enabled, local files otherwise.
func NewLoader(ctx context.Context, cfg config.S3Config, logger zerolog.Logger) (Loader, error) {
	file := NewFileLoader(logger)
	if !cfg.Enabled {
		return file, nil
	}
	s3, err := NewS3Loader(ctx, cfg.Bucket, cfg.Region, logger)
	if err != nil {
		return nil, err
	}
	return NewFallbackLoader(s3, file, cfg.Prefix, logger), nil
}

// Seeder imports catalogue files into the product store.
type Seeder struct {
	loader   Loader
	products repository.ProductRepository
	logger   zerolog.Logger
}

// NewSeeder creates a new catalogue seeder.
func NewSeeder(loader Loader, products repository.ProductRepository, logger zerolog.Logger) *Seeder {
	return &Seeder{
		loader:   loader,
		products: products,
		logger:   logger.With().Str("component", "catalog-seeder").Logger(),
	}
}

// Seed loads every file concurrently, merges them in the given order so that
// a product in a later file overrides an earlier one, and upserts the result.
// Nothing is written when any file fails to load.
func (s *Seeder) Seed(ctx context.Context, paths []string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	s.logger.Info().Int("file_count", len(paths)).Msg("seeding catalogue")

	type loadResult struct {
		index int
		set   ProductSet
		err   error
	}

	resultChan := make(chan loadResult, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			set, err := s.loader.Load(ctx, path)
			resultChan <- loadResult{index: index, set: set, err: err}
		}(i, path)
	}

	wg.Wait()
	close(resultChan)

	results := make([]loadResult, len(paths))
	for result := range resultChan {
		results[result.index] = result
	}

	merged := newProductSet(0)
	for i, result := range results {
		if result.err != nil {
			s.logger.Error().
				Err(result.err).
				Str("file", paths[i]).
				Msg("failed to load catalogue file")
			return 0, fmt.Errorf("failed to load catalogue file %s: %w", paths[i], result.err)
		}
		merged.Merge(result.set)
	}

	written, err := s.products.Upsert(ctx, merged.Products())
	if err != nil {
		return 0, fmt.Errorf("failed to upsert catalogue: %w", err)
	}

	s.logger.Info().
		Int("products", merged.Size()).
		Int("written", written).
		Msg("catalogue seeded")

	return written, nil
}
