package upstream

import (
	"context"
	"fmt"

	"github.com/okian/marquee/internal/domain/fault"
	"github.com/okian/marquee/internal/domain/model"
)

// APIVersion selects the response shape of the user-ratings endpoint.
type APIVersion string

const (
	// V1 returns a bare list of ratings.
	V1 APIVersion = "v1"
	// V2 returns the {userId, ratings} envelope.
	V2 APIVersion = "v2"
)

// ParseAPIVersion validates a configured version string.
func ParseAPIVersion(s string) (APIVersion, error) {
	switch APIVersion(s) {
	case V1, V2:
		return APIVersion(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
}

// RatingClient reads user ratings from the rating service.
type RatingClient struct {
	client  *Client
	version APIVersion
}

// NewRatingClient wraps c, requesting the given explicit API version.
func NewRatingClient(c *Client, version APIVersion) *RatingClient {
	if version == "" {
		version = V2
	}
	return &RatingClient{client: c, version: version}
}

// UserRatings returns the user's ratings in upstream order.
func (r *RatingClient) UserRatings(ctx context.Context, userID model.ID) ([]model.Rating, error) {
	ref := Ref{Op: "rating.user_ratings", Resource: fault.ResourceUser, ID: userID.String()}
	body, err := r.client.Get(ctx, ref, nil, string(r.version), "ratings", "users", userID.String())
	if err != nil {
		return nil, err
	}

	if r.version == V1 {
		var ratings []model.Rating
		if err := decodeJSON(ref, body, &ratings); err != nil {
			return nil, err
		}
		return ratings, nil
	}

	var env model.UserRatings
	if err := decodeJSON(ref, body, &env); err != nil {
		return nil, err
	}
	if env.UserID != 0 && env.UserID != userID {
		return nil, &fault.Error{
			Kind:     fault.KindUpstreamBadResponse,
			Op:       ref.Op,
			Resource: ref.Resource,
			ID:       ref.ID,
			Err:      fmt.Errorf("envelope for user %s", env.UserID),
		}
	}
	return env.Ratings, nil
}
