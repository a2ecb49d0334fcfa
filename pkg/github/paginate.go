package github

import (
	"context"
	"iter"

	gh "github.com/google/go-github/v68/github"
)

// pageFunc fetches one page. page is 0 for the first request.
type pageFunc[T any] func(ctx context.Context, page int) ([]T, *gh.Response, error)

// paginate yields items across pages, requesting the next page only when the
// consumer has drained the current one. Breaking out of the loop stops all
// further requests. The first error is mapped, yielded once and ends the
// sequence.
func paginate[T any](ctx context.Context, fetch pageFunc[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		page := 0
		for {
			items, resp, err := fetch(ctx, page)
			if err != nil {
				var zero T
				yield(zero, mapGitHubError(resp, err))
				return
			}

			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}

			if resp == nil || resp.NextPage == 0 {
				return
			}
			page = resp.NextPage
		}
	}
}
