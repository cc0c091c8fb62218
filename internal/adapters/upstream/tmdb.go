package upstream

import (
	"context"
	"errors"
	"net/url"

	"github.com/okian/marquee/internal/domain/fault"
	"github.com/okian/marquee/internal/domain/model"
	"github.com/tidwall/gjson"
)

// DefaultTMDBBaseURL is the public movie database API root.
const DefaultTMDBBaseURL = "https://api.themoviedb.org"

// TMDBClient resolves movie details through the third-party movie database.
// The API key is appended as a query parameter on every call.
type TMDBClient struct {
	client *Client
	apiKey string
}

// NewTMDBClient wraps c. An empty apiKey is rejected.
func NewTMDBClient(c *Client, apiKey string) (*TMDBClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &TMDBClient{client: c, apiKey: apiKey}, nil
}

// Detail fetches /3/movie/{id} and maps title to name and overview to description.
func (t *TMDBClient) Detail(ctx context.Context, movieID model.ID) (model.ItemDetail, error) {
	ref := Ref{Op: "tmdb.detail", Resource: fault.ResourceMovie, ID: movieID.String()}
	q := url.Values{"api_key": []string{t.apiKey}}
	body, err := t.client.Get(ctx, ref, q, "3", "movie", movieID.String())
	if err != nil {
		return model.ItemDetail{}, err
	}
	return parseTMDBMovie(ref, movieID, body)
}

func parseTMDBMovie(ref Ref, movieID model.ID, body []byte) (model.ItemDetail, error) {
	bad := func(msg string) error {
		return &fault.Error{
			Kind:     fault.KindUpstreamBadResponse,
			Op:       ref.Op,
			Resource: ref.Resource,
			ID:       ref.ID,
			Err:      errors.New(msg),
		}
	}
	if !gjson.ValidBytes(body) {
		return model.ItemDetail{}, bad("malformed json")
	}

	fields := gjson.GetManyBytes(body, "id", "title", "overview")
	title := fields[1].String()
	if title == "" {
		return model.ItemDetail{}, bad("movie without title")
	}
	id := movieID
	if n := fields[0].Int(); n > 0 {
		id = model.ID(n)
	}
	return model.ItemDetail{ID: id, Name: title, Description: fields[2].String()}, nil
}
