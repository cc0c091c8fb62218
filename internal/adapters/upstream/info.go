package upstream

import (
	"context"
	"errors"

	"github.com/okian/marquee/internal/domain/fault"
	"github.com/okian/marquee/internal/domain/model"
)

// InfoClient reads movie details from the info service.
type InfoClient struct {
	client *Client
}

// NewInfoClient wraps c.
func NewInfoClient(c *Client) *InfoClient {
	return &InfoClient{client: c}
}

// Detail returns the movie detail served at /movies/{id}.
func (i *InfoClient) Detail(ctx context.Context, movieID model.ID) (model.ItemDetail, error) {
	ref := Ref{Op: "info.detail", Resource: fault.ResourceMovie, ID: movieID.String()}
	body, err := i.client.Get(ctx, ref, nil, "movies", movieID.String())
	if err != nil {
		return model.ItemDetail{}, err
	}

	var d model.ItemDetail
	if err := decodeJSON(ref, body, &d); err != nil {
		return model.ItemDetail{}, err
	}
	if d.Name == "" {
		return model.ItemDetail{}, &fault.Error{
			Kind:     fault.KindUpstreamBadResponse,
			Op:       ref.Op,
			Resource: ref.Resource,
			ID:       ref.ID,
			Err:      errors.New("detail without name"),
		}
	}
	if d.ID == 0 {
		d.ID = movieID
	}
	return d, nil
}
