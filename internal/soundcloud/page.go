package soundcloud

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/handiism/soundcloud-downloader/internal/batch"
)

// decodeFunc converts one raw collection element. ok is false for
// elements that should be skipped.
type decodeFunc[T any] func(raw []byte) (item T, ok bool, err error)

// decodePage splits a {collection, next_href} envelope.
func decodePage[T any](body []byte, decode decodeFunc[T]) (batch.Page[T], error) {
	if !gjson.ValidBytes(body) {
		return batch.Page[T]{}, fmt.Errorf("decoding page: invalid json")
	}

	var (
		page batch.Page[T]
		err  error
	)
	gjson.GetBytes(body, "collection").ForEach(func(_, v gjson.Result) bool {
		item, ok, derr := decode([]byte(v.Raw))
		if derr != nil {
			err = derr
			return false
		}
		if ok {
			page.Items = append(page.Items, item)
		}
		return true
	})
	if err != nil {
		return batch.Page[T]{}, fmt.Errorf("decoding page: %w", err)
	}

	if next := gjson.GetBytes(body, "next_href").String(); next != "" {
		page.Next = batch.Cursor{Href: next}
	}
	return page, nil
}

// collectionFetcher fetches pages of a collection endpoint. endpoint is
// called lazily on the first offset-based fetch so that callers can
// defer resolution work to the enumeration itself.
func collectionFetcher[T any](c *Client, auth Auth, endpoint func(ctx context.Context) (string, error), decode decodeFunc[T]) batch.FetchFunc[T] {
	return func(ctx context.Context, cur batch.Cursor) (batch.Page[T], error) {
		var (
			target string
			err    error
		)
		if cur.Opaque() {
			target, err = withQuery(cur.Href, url.Values{"client_id": {auth.ClientID}})
		} else {
			var base string
			if base, err = endpoint(ctx); err != nil {
				return batch.Page[T]{}, err
			}
			target, err = withQuery(base, url.Values{
				"offset":    {strconv.Itoa(cur.Offset)},
				"limit":     {strconv.Itoa(cur.Limit)},
				"client_id": {auth.ClientID},
			})
		}
		if err != nil {
			return batch.Page[T]{}, fmt.Errorf("building page url: %w", err)
		}

		body, err := c.http.Get(ctx, target)
		if err != nil {
			return batch.Page[T]{}, err
		}
		return decodePage(body, decode)
	}
}

// staticEndpoint wraps a fixed collection URL.
func staticEndpoint(u string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) { return u, nil }
}
