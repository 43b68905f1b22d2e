// Package collection provides the sources of publish targets: targets listed
// in the config file, a remote listing endpoint, and a cache over either.
package collection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Yiling-J/theine-go"

	"zhihu_answer_publisher/httpclient"
	"zhihu_answer_publisher/target"
)

// Static is a fixed list of candidates, usually from the config file.
type Static []target.Candidate

func (s Static) Targets(context.Context) ([]target.Candidate, error) {
	out := make([]target.Candidate, len(s))
	copy(out, s)
	return out, nil
}

// Remote lists candidates from an HTTP endpoint returning either a JSON
// array or an object with a "data" array.
type Remote struct {
	client httpclient.Doer
	url    string
}

func NewRemote(client httpclient.Doer, url string) (*Remote, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	if url == "" {
		return nil, errors.New("collection url is required")
	}
	return &Remote{client: client, url: url}, nil
}

func (r *Remote) Targets(ctx context.Context) ([]target.Candidate, error) {
	resp, err := r.client.Send(ctx, httpclient.Request{
		URI:  r.url,
		JSON: true,
		Gzip: true,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch collection: %w", err)
	}
	return decodeCandidates(resp.Body)
}

func decodeCandidates(body []byte) ([]target.Candidate, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var list []target.Candidate
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("decode collection: %w", err)
		}
		return list, nil
	}
	var page struct {
		Data []target.Candidate `json:"data"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return page.Data, nil
}

// Merge concatenates the candidates of several collections in order.
func Merge(collections ...target.Collection) target.Collection {
	return merged(collections)
}

type merged []target.Collection

func (m merged) Targets(ctx context.Context) ([]target.Candidate, error) {
	var out []target.Candidate
	for _, c := range m {
		if c == nil {
			continue
		}
		list, err := c.Targets(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, list...)
	}
	return out, nil
}

const cacheKey = "targets"

// Cached keeps a listing for ttl so repeated requests from the workspace
// server do not hit the source every time.
type Cached struct {
	cache *theine.LoadingCache[string, []target.Candidate]
}

func NewCached(source target.Collection, ttl time.Duration) (*Cached, error) {
	if source == nil {
		return nil, errors.New("source collection is required")
	}
	cache, err := theine.NewBuilder[string, []target.Candidate](16).BuildWithLoader(func(ctx context.Context, key string) (theine.Loaded[[]target.Candidate], error) {
		list, err := source.Targets(ctx)
		if err != nil {
			return theine.Loaded[[]target.Candidate]{}, err
		}
		return theine.Loaded[[]target.Candidate]{
			Value: list,
			Cost:  1,
			TTL:   ttl,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not build collection cache: %w", err)
	}
	return &Cached{cache: cache}, nil
}

func (c *Cached) Targets(ctx context.Context) ([]target.Candidate, error) {
	list, err := c.cache.Get(ctx, cacheKey)
	if err != nil {
		return nil, err
	}
	out := make([]target.Candidate, len(list))
	copy(out, list)
	return out, nil
}
