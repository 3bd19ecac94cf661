package data

import (
	"context"

	"fuel-rl/internal/model"
)

// Source locates a dataset either on disk or over HTTP.
type Source struct {
	Path string
	URL  string
	// Limit keeps the first Limit rows when > 0.
	Limit int
}

func (s Source) String() string {
	if s.URL != "" {
		return s.URL
	}
	return s.Path
}

// Open loads the dataset, preferring URL over Path.
func Open(ctx context.Context, s Source) (*model.Dataset, error) {
	var (
		ds  *model.Dataset
		err error
	)
	if s.URL != "" {
		ds, _, err = NewFetcher(0).FetchDataset(ctx, s.URL)
	} else {
		ds, err = Load(s.Path)
	}
	if err != nil {
		return nil, err
	}
	if s.Limit > 0 {
		ds = ds.Head(s.Limit)
	}
	return ds, nil
}
